package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/edustack/learnhub-api/internal/models"
	appErrors "github.com/edustack/learnhub-api/pkg/errors"
)

type instructorRepository interface {
	Insert(ctx context.Context, instructor *models.Instructor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error)
	List(ctx context.Context) ([]models.Instructor, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.InstructorUpdate) (*models.Instructor, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error)
}

type courseCascader interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error)
	DeleteByInstructor(ctx context.Context, instructorID primitive.ObjectID) (int64, error)
}

// CreateInstructorRequest describes instructor creation.
type CreateInstructorRequest struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Expertise []string `json:"expertise"`
}

// InstructorService manages instructor CRUD and the course delete cascade.
type InstructorService struct {
	instructors instructorRepository
	courses     courseCascader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewInstructorService constructs InstructorService.
func NewInstructorService(instructors instructorRepository, courses courseCascader, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{instructors: instructors, courses: courses, validator: validate, logger: logger}
}

// Create registers a new instructor with an empty coursesCreated list.
func (s *InstructorService) Create(ctx context.Context, req CreateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	instructor := &models.Instructor{
		Name:      req.Name,
		Email:     req.Email,
		Expertise: req.Expertise,
	}
	if instructor.Expertise == nil {
		instructor.Expertise = []string{}
	}
	if err := s.instructors.Insert(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save instructor")
	}
	return instructor, nil
}

// List returns all instructors with their created-course projections.
func (s *InstructorService) List(ctx context.Context) ([]models.InstructorDetail, error) {
	instructors, err := s.instructors.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	details := make([]models.InstructorDetail, 0, len(instructors))
	for _, instructor := range instructors {
		detail, err := s.detail(ctx, instructor)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// Get fetches an instructor by id.
func (s *InstructorService) Get(ctx context.Context, id string) (*models.InstructorDetail, error) {
	oid, err := parseObjectID(id, "invalid instructor id")
	if err != nil {
		return nil, err
	}
	instructor, err := s.instructors.FindByID(ctx, oid)
	if err != nil {
		return nil, s.mapErr(err, "failed to load instructor")
	}
	return s.detail(ctx, *instructor)
}

// Update merges the patch into the instructor document.
func (s *InstructorService) Update(ctx context.Context, id string, patch models.InstructorUpdate) (*models.Instructor, error) {
	oid, err := parseObjectID(id, "invalid instructor id")
	if err != nil {
		return nil, err
	}
	instructor, err := s.instructors.UpdateByID(ctx, oid, patch)
	if err != nil {
		return nil, s.mapErr(err, "failed to update instructor")
	}
	return instructor, nil
}

// Delete cascades: every course owned by the instructor is bulk-deleted
// first (child before parent), then the instructor itself. Courses already
// enrolled by students are not removed from their enrolledCourses lists;
// those references go stale.
func (s *InstructorService) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, "invalid instructor id")
	if err != nil {
		return err
	}

	deleted, err := s.courses.DeleteByInstructor(ctx, oid)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor courses")
	}
	if deleted > 0 {
		s.logger.Info("cascade deleted instructor courses",
			zap.String("instructor_id", id),
			zap.Int64("courses", deleted),
		)
	}

	if _, err := s.instructors.DeleteByID(ctx, oid); err != nil {
		return s.mapErr(err, "failed to delete instructor")
	}
	return nil
}

func (s *InstructorService) detail(ctx context.Context, instructor models.Instructor) (*models.InstructorDetail, error) {
	courses, err := s.courses.FindByIDs(ctx, instructor.CoursesCreated)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor courses")
	}
	summaries := make([]models.CourseSummary, 0, len(courses))
	for _, course := range courses {
		summaries = append(summaries, course.Summary())
	}
	return &models.InstructorDetail{Instructor: instructor, Courses: summaries}, nil
}

func (s *InstructorService) mapErr(err error, message string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func parseObjectID(raw, message string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return oid, nil
}
