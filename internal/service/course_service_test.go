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

type mockCourseRepo struct {
	items     map[string]*models.Course
	codeIndex map[string]string
	deleted   []string
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var out []models.Course
	for _, course := range m.items {
		out = append(out, *course)
	}
	return out, len(out), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := m.items[id]; ok {
		cp := *course
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	for _, course := range m.items {
		if course.Code == code {
			cp := *course
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	if owner, ok := m.codeIndex[code]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.items == nil {
		m.items = make(map[string]*models.Course)
	}
	if course.ID == "" {
		course.ID = "generated"
	}
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	cp := *course
	m.items[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	cp := *course
	m.items[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func newCourseService(repo *mockCourseRepo) *CourseService {
	faculties := &mockFacultyDir{items: map[string]*models.Faculty{
		"f1": {ID: "f1", EmployeeID: "EMP01", FullName: "Dr. Rao"},
	}}
	return NewCourseService(repo, faculties, validator.New(), zap.NewNop())
}

func TestCourseServiceCreate(t *testing.T) {
	repo := &mockCourseRepo{}
	service := newCourseService(repo)

	course, err := service.Create(context.Background(), CreateCourseRequest{
		Code:     "cs101",
		Title:    "Programming",
		Credits:  4,
		Semester: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.Code)
	assert.Len(t, repo.items, 1)
}

func TestCourseServiceCreateInvalidCode(t *testing.T) {
	service := newCourseService(&mockCourseRepo{})

	for _, code := range []string{"C1", "COMPUTERS101", "CS1", "101CS"} {
		_, err := service.Create(context.Background(), CreateCourseRequest{
			Code:     code,
			Title:    "Programming",
			Credits:  4,
			Semester: 1,
		})
		require.Error(t, err, "code %q should be rejected", code)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockCourseRepo{codeIndex: map[string]string{"CS101": "other"}}
	service := newCourseService(repo)

	_, err := service.Create(context.Background(), CreateCourseRequest{
		Code:     "CS101",
		Title:    "Programming",
		Credits:  4,
		Semester: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceCreateUnknownFaculty(t *testing.T) {
	service := newCourseService(&mockCourseRepo{})

	_, err := service.Create(context.Background(), CreateCourseRequest{
		Code:            "CS101",
		Title:           "Programming",
		Credits:         4,
		Semester:        1,
		FacultyInCharge: strPtr("ghost"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFacultyNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdate(t *testing.T) {
	repo := &mockCourseRepo{
		items: map[string]*models.Course{
			"c1": {ID: "c1", Code: "CS101", Title: "Programming", Credits: 4, Semester: 1},
		},
	}
	service := newCourseService(repo)

	updated, err := service.Update(context.Background(), "c1", UpdateCourseRequest{
		Code:     "CS102",
		Title:    "Data Structures",
		Credits:  3,
		Semester: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS102", updated.Code)
	assert.Equal(t, 3, updated.Credits)
}

func TestCourseServiceDelete(t *testing.T) {
	repo := &mockCourseRepo{
		items: map[string]*models.Course{
			"c1": {ID: "c1", Code: "CS101", Title: "Programming", Credits: 4, Semester: 1},
		},
	}
	service := newCourseService(repo)

	require.NoError(t, service.Delete(context.Background(), "c1"))
	assert.Equal(t, []string{"c1"}, repo.deleted)

	err := service.Delete(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCourseNotFound.Code, appErrors.FromError(err).Code)
}
