package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cse-aiml/timetable-api/internal/models"
)

// FacultyRepository provides persistence for faculty records.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new faculty repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyColumns = "id, employee_id, full_name, email, phone, designation, subjects, active, created_at, updated_at"

// List returns faculties with optional filtering and pagination.
func (r *FacultyRepository) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error) {
	base := "FROM faculties WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Designation != "" {
		conditions = append(conditions, fmt.Sprintf("designation = $%d", len(args)+1))
		args = append(args, filter.Designation)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d OR employee_id ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"full_name":   true,
		"employee_id": true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "full_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", facultyColumns, base, sortBy, order, size, offset)
	var faculties []models.Faculty
	if err := r.db.SelectContext(ctx, &faculties, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list faculties: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count faculties: %w", err)
	}

	return faculties, total, nil
}

// FindByID loads a faculty by id.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, `SELECT `+facultyColumns+` FROM faculties WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// ExistsByEmployeeID reports whether another faculty already uses the employee id.
func (r *FacultyRepository) ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM faculties WHERE employee_id = $1`
	args := []interface{}{employeeID}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check employee id: %w", err)
	}
	return count > 0, nil
}

// ExistsByEmail reports whether another faculty already uses the email.
func (r *FacultyRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM faculties WHERE LOWER(email) = LOWER($1)`
	args := []interface{}{email}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check faculty email: %w", err)
	}
	return count > 0, nil
}

// Create stores a new faculty record.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if faculty.CreatedAt.IsZero() {
		faculty.CreatedAt = now
	}
	faculty.UpdatedAt = now

	const query = `INSERT INTO faculties (id, employee_id, full_name, email, phone, designation, subjects, active, created_at, updated_at) VALUES (:id, :employee_id, :full_name, :email, :phone, :designation, :subjects, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// Update modifies a faculty record.
func (r *FacultyRepository) Update(ctx context.Context, faculty *models.Faculty) error {
	faculty.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faculties SET employee_id = :employee_id, full_name = :full_name, email = :email, phone = :phone, designation = :designation, subjects = :subjects, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	return nil
}

// Deactivate marks a faculty record inactive.
func (r *FacultyRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE faculties SET active = false, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("deactivate faculty: %w", err)
	}
	return nil
}
