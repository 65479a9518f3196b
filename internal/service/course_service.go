package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cse-aiml/timetable-api/internal/models"
	appErrors "github.com/cse-aiml/timetable-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// Course codes: 3-6 letters followed by 3-4 digits, e.g. CS101, MATH2024.
var courseCodePattern = regexp.MustCompile(`^[A-Z]{3,6}\d{3,4}$`)

// CreateCourseRequest describes payload for creating a course.
type CreateCourseRequest struct {
	Code            string  `json:"code" validate:"required"`
	Title           string  `json:"title" validate:"required"`
	Credits         int     `json:"credits" validate:"required,min=1,max=6"`
	Semester        int     `json:"semester" validate:"required,min=1,max=8"`
	FacultyInCharge *string `json:"faculty_in_charge,omitempty"`
	Description     *string `json:"description,omitempty"`
}

// UpdateCourseRequest updates an existing course.
type UpdateCourseRequest struct {
	Code            string  `json:"code" validate:"required"`
	Title           string  `json:"title" validate:"required"`
	Credits         int     `json:"credits" validate:"required,min=1,max=6"`
	Semester        int     `json:"semester" validate:"required,min=1,max=8"`
	FacultyInCharge *string `json:"faculty_in_charge,omitempty"`
	Description     *string `json:"description,omitempty"`
}

// CourseService coordinates course records; it also backs course-code
// resolution for the timetable engine.
type CourseService struct {
	repo      courseRepository
	faculties facultyResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService instantiates CourseService.
func NewCourseService(repo courseRepository, faculties facultyResolver, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, faculties: faculties, validator: validate, logger: logger}
}

// List returns courses with pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one course record.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrCourseNotFound, fmt.Sprintf("course %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create inserts a new course after code validation and uniqueness checks.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !courseCodePattern.MatchString(code) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid course code %q", req.Code))
	}

	if taken, err := s.repo.ExistsByCode(ctx, code, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course code %s already registered", code))
	}

	if err := s.resolveFacultyInCharge(ctx, req.FacultyInCharge); err != nil {
		return nil, err
	}

	course := &models.Course{
		Code:            code,
		Title:           req.Title,
		Credits:         req.Credits,
		Semester:        req.Semester,
		FacultyInCharge: req.FacultyInCharge,
		Description:     req.Description,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update modifies an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !courseCodePattern.MatchString(code) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid course code %q", req.Code))
	}

	if taken, err := s.repo.ExistsByCode(ctx, code, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	} else if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course code %s already registered", code))
	}

	if err := s.resolveFacultyInCharge(ctx, req.FacultyInCharge); err != nil {
		return nil, err
	}

	updated := *existing
	updated.Code = code
	updated.Title = req.Title
	updated.Credits = req.Credits
	updated.Semester = req.Semester
	updated.FacultyInCharge = req.FacultyInCharge
	updated.Description = req.Description

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return &updated, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}

func (s *CourseService) resolveFacultyInCharge(ctx context.Context, facultyID *string) error {
	if facultyID == nil || *facultyID == "" {
		return nil
	}
	if _, err := s.faculties.FindByID(ctx, *facultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrFacultyNotFound, fmt.Sprintf("faculty %s not found", *facultyID))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
	}
	return nil
}
