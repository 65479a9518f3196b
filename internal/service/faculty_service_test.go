package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cse-aiml/timetable-api/internal/models"
	appErrors "github.com/cse-aiml/timetable-api/pkg/errors"
)

type mockFacultyRepo struct {
	items         map[string]*models.Faculty
	employeeIndex map[string]string
	emailIndex    map[string]string
	listResult    []models.Faculty
	listTotal     int
	deactivated   []string
}

func (m *mockFacultyRepo) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockFacultyRepo) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	if faculty, ok := m.items[id]; ok {
		cp := *faculty
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFacultyRepo) ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error) {
	if owner, ok := m.employeeIndex[employeeID]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFacultyRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	if owner, ok := m.emailIndex[email]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFacultyRepo) Create(ctx context.Context, faculty *models.Faculty) error {
	if m.items == nil {
		m.items = make(map[string]*models.Faculty)
	}
	if faculty.ID == "" {
		faculty.ID = "generated"
	}
	now := time.Now()
	faculty.CreatedAt = now
	faculty.UpdatedAt = now
	cp := *faculty
	m.items[faculty.ID] = &cp
	return nil
}

func (m *mockFacultyRepo) Update(ctx context.Context, faculty *models.Faculty) error {
	cp := *faculty
	m.items[faculty.ID] = &cp
	return nil
}

func (m *mockFacultyRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	if f, ok := m.items[id]; ok {
		f.Active = false
	}
	return nil
}

func TestFacultyServiceCreate(t *testing.T) {
	repo := &mockFacultyRepo{}
	service := NewFacultyService(repo, validator.New(), zap.NewNop())

	faculty, err := service.Create(context.Background(), CreateFacultyRequest{
		EmployeeID: "EMP01",
		FullName:   "Dr. Rao",
		Email:      "rao@example.com",
		Subjects:   []string{"algorithms", "databases"},
	})
	require.NoError(t, err)
	assert.Equal(t, "EMP01", faculty.EmployeeID)
	assert.True(t, faculty.Active)
	assert.Len(t, repo.items, 1)
}

func TestFacultyServiceCreateDuplicateEmployeeID(t *testing.T) {
	repo := &mockFacultyRepo{employeeIndex: map[string]string{"EMP01": "other"}}
	service := NewFacultyService(repo, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateFacultyRequest{
		EmployeeID: "EMP01",
		FullName:   "Dr. Rao",
		Email:      "rao@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestFacultyServiceGetMissing(t *testing.T) {
	service := NewFacultyService(&mockFacultyRepo{}, validator.New(), zap.NewNop())

	_, err := service.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFacultyNotFound.Code, appErrors.FromError(err).Code)
}

func TestFacultyServiceUpdate(t *testing.T) {
	repo := &mockFacultyRepo{
		items: map[string]*models.Faculty{
			"f1": {ID: "f1", EmployeeID: "EMP01", FullName: "Dr. Rao", Email: "rao@example.com", Active: true},
		},
	}
	service := NewFacultyService(repo, validator.New(), zap.NewNop())

	active := false
	updated, err := service.Update(context.Background(), "f1", UpdateFacultyRequest{
		EmployeeID: "EMP01",
		FullName:   "Dr. Rao Sr.",
		Email:      "rao.sr@example.com",
		Active:     &active,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rao Sr.", updated.FullName)
	assert.False(t, updated.Active)
}

func TestFacultyServiceDeactivate(t *testing.T) {
	repo := &mockFacultyRepo{
		items: map[string]*models.Faculty{
			"f1": {ID: "f1", EmployeeID: "EMP01", FullName: "Dr. Rao", Email: "rao@example.com", Active: true},
		},
	}
	service := NewFacultyService(repo, validator.New(), zap.NewNop())

	require.NoError(t, service.Deactivate(context.Background(), "f1"))
	assert.Equal(t, []string{"f1"}, repo.deactivated)
}
