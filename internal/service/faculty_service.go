package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cse-aiml/timetable-api/internal/models"
	appErrors "github.com/cse-aiml/timetable-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, faculty *models.Faculty) error
	Update(ctx context.Context, faculty *models.Faculty) error
	Deactivate(ctx context.Context, id string) error
}

// CreateFacultyRequest describes payload for creating a faculty member.
type CreateFacultyRequest struct {
	EmployeeID  string   `json:"employee_id" validate:"required"`
	FullName    string   `json:"full_name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       *string  `json:"phone,omitempty"`
	Designation *string  `json:"designation,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
}

// UpdateFacultyRequest updates an existing faculty member.
type UpdateFacultyRequest struct {
	EmployeeID  string   `json:"employee_id" validate:"required"`
	FullName    string   `json:"full_name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       *string  `json:"phone,omitempty"`
	Designation *string  `json:"designation,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// FacultyService coordinates faculty records; it also backs slot reference
// resolution for the timetable engine.
type FacultyService struct {
	repo      facultyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService instantiates FacultyService.
func NewFacultyService(repo facultyRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, validator: validate, logger: logger}
}

// List returns faculties with pagination metadata.
func (s *FacultyService) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, *models.Pagination, error) {
	faculties, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculties")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return faculties, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one faculty record.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.Faculty, error) {
	faculty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrFacultyNotFound, fmt.Sprintf("faculty %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return faculty, nil
}

// Create inserts a new faculty member after uniqueness checks.
func (s *FacultyService) Create(ctx context.Context, req CreateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	if taken, err := s.repo.ExistsByEmployeeID(ctx, req.EmployeeID, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee id")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("employee id %s already registered", req.EmployeeID))
	}
	if taken, err := s.repo.ExistsByEmail(ctx, req.Email, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("email %s already registered", req.Email))
	}

	faculty := &models.Faculty{
		EmployeeID:  req.EmployeeID,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Designation: req.Designation,
		Subjects:    req.Subjects,
		Active:      true,
	}
	if err := s.repo.Create(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}
	return faculty, nil
}

// Update modifies an existing faculty member.
func (s *FacultyService) Update(ctx context.Context, id string, req UpdateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if taken, err := s.repo.ExistsByEmployeeID(ctx, req.EmployeeID, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee id")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("employee id %s already registered", req.EmployeeID))
	}
	if taken, err := s.repo.ExistsByEmail(ctx, req.Email, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("email %s already registered", req.Email))
	}

	updated := *existing
	updated.EmployeeID = req.EmployeeID
	updated.FullName = req.FullName
	updated.Email = req.Email
	updated.Phone = req.Phone
	updated.Designation = req.Designation
	updated.Subjects = req.Subjects
	if req.Active != nil {
		updated.Active = *req.Active
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}
	return &updated, nil
}

// Deactivate marks a faculty member inactive without removing history.
func (s *FacultyService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate faculty")
	}
	return nil
}
