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

type courseRepository interface {
	Insert(ctx context.Context, course *models.Course) error
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error)
	FindByCourseID(ctx context.Context, courseID string) (*models.Course, error)
	FindByName(ctx context.Context, name string) (*models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	UpdateByCourseID(ctx context.Context, courseID string, patch models.CourseUpdate) (*models.Course, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	DeleteByCourseID(ctx context.Context, courseID string) (*models.Course, error)
}

type instructorLinker interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Instructor, error)
	AddCourseRef(ctx context.Context, instructorID, courseID primitive.ObjectID) error
	RemoveCourseRef(ctx context.Context, instructorID, courseID primitive.ObjectID) error
}

// CreateCourseRequest describes course creation.
type CreateCourseRequest struct {
	CourseID      string   `json:"courseId" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Tags          []string `json:"tags"`
	Complexity    string   `json:"complexity" validate:"required"`
	Prerequisites []string `json:"prerequisites"`
	Duration      string   `json:"duration" validate:"required"`
	Rating        float64  `json:"rating"`
	Instructor    string   `json:"instructor" validate:"required"`
}

// CourseService performs every write touching both the course document and
// its instructor's back-reference list. Writes follow a fixed order: the
// course (child) is mutated before the instructor (parent), so a failure in
// between leaves at worst a course missing from an instructor's list, never
// an instructor pointing at a deleted course.
type CourseService struct {
	courses     courseRepository
	instructors instructorLinker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(courses courseRepository, instructors instructorLinker, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, instructors: instructors, validator: validate, logger: logger}
}

// List returns all courses with their instructor projections.
func (s *CourseService) List(ctx context.Context) ([]models.CourseDetail, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	ids := make([]primitive.ObjectID, 0, len(courses))
	seen := make(map[primitive.ObjectID]struct{}, len(courses))
	for _, course := range courses {
		if _, ok := seen[course.Instructor]; !ok {
			seen[course.Instructor] = struct{}{}
			ids = append(ids, course.Instructor)
		}
	}
	instructors, err := s.instructors.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}
	byID := make(map[primitive.ObjectID]models.InstructorSummary, len(instructors))
	for _, instructor := range instructors {
		byID[instructor.ID] = instructor.Summary()
	}

	details := make([]models.CourseDetail, 0, len(courses))
	for _, course := range courses {
		detail := models.CourseDetail{Course: course}
		if summary, ok := byID[course.Instructor]; ok {
			detail.InstructorInfo = &summary
		}
		details = append(details, detail)
	}
	return details, nil
}

// ListByIDs returns the courses for the given storage identities with their
// instructor projections. Stale references simply yield fewer courses.
func (s *CourseService) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.CourseDetail, error) {
	courses, err := s.courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	details := make([]models.CourseDetail, 0, len(courses))
	for _, course := range courses {
		c := course
		details = append(details, *s.detail(ctx, &c))
	}
	return details, nil
}

// GetByCourseID fetches a course by business key.
func (s *CourseService) GetByCourseID(ctx context.Context, courseID string) (*models.CourseDetail, error) {
	course, err := s.courses.FindByCourseID(ctx, courseID)
	if err != nil {
		return nil, s.mapCourseErr(err, "failed to load course")
	}
	return s.detail(ctx, course), nil
}

// GetByName fetches a course by display name.
func (s *CourseService) GetByName(ctx context.Context, name string) (*models.CourseDetail, error) {
	course, err := s.courses.FindByName(ctx, name)
	if err != nil {
		return nil, s.mapCourseErr(err, "failed to load course")
	}
	return s.detail(ctx, course), nil
}

// Create inserts the course, validates its instructor reference, and links
// the back-reference. If the instructor cannot be found the insert is undone
// by a compensating delete so no course is left with a dangling reference.
// A back-reference push failing after a successful validation is logged and
// the create still succeeds; the course document is already durable.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	instructorID, err := primitive.ObjectIDFromHex(req.Instructor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor id")
	}

	course := &models.Course{
		CourseID:      req.CourseID,
		Name:          req.Name,
		Description:   req.Description,
		Tags:          req.Tags,
		Complexity:    req.Complexity,
		Prerequisites: req.Prerequisites,
		Duration:      req.Duration,
		Rating:        req.Rating,
		Instructor:    instructorID,
	}
	if course.Tags == nil {
		course.Tags = []string{}
	}
	if course.Prerequisites == nil {
		course.Prerequisites = []string{}
	}

	if err := s.courses.Insert(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}

	instructor, err := s.instructors.FindByID(ctx, instructorID)
	if err != nil {
		s.compensateCreate(ctx, course)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	if err := s.instructors.AddCourseRef(ctx, instructorID, course.ID); err != nil {
		s.logger.Error("course back-reference update failed",
			zap.String("course_id", course.CourseID),
			zap.String("instructor_id", instructorID.Hex()),
			zap.Error(err),
		)
	}

	summary := instructor.Summary()
	return &models.CourseDetail{Course: *course, InstructorInfo: &summary}, nil
}

// Update merges the patch into the course identified by business key. The
// instructor reference is never re-linked here.
func (s *CourseService) Update(ctx context.Context, courseID string, patch models.CourseUpdate) (*models.Course, error) {
	course, err := s.courses.UpdateByCourseID(ctx, courseID, patch)
	if err != nil {
		return nil, s.mapCourseErr(err, "failed to update course")
	}
	return course, nil
}

// Delete removes the course by business key, then unlinks it from its
// instructor's coursesCreated list. A missing instructor or a failed unlink
// is tolerated: the course deletion already succeeded.
func (s *CourseService) Delete(ctx context.Context, courseID string) error {
	course, err := s.courses.DeleteByCourseID(ctx, courseID)
	if err != nil {
		return s.mapCourseErr(err, "failed to delete course")
	}

	if err := s.instructors.RemoveCourseRef(ctx, course.Instructor, course.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Debug("instructor absent while unlinking deleted course",
				zap.String("course_id", courseID),
				zap.String("instructor_id", course.Instructor.Hex()),
			)
		} else {
			s.logger.Error("course back-reference removal failed",
				zap.String("course_id", courseID),
				zap.String("instructor_id", course.Instructor.Hex()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *CourseService) compensateCreate(ctx context.Context, course *models.Course) {
	if err := s.courses.DeleteByID(ctx, course.ID); err != nil {
		s.logger.Error("compensating course delete failed",
			zap.String("course_id", course.CourseID),
			zap.Error(err),
		)
	}
}

func (s *CourseService) detail(ctx context.Context, course *models.Course) *models.CourseDetail {
	detail := &models.CourseDetail{Course: *course}
	instructor, err := s.instructors.FindByID(ctx, course.Instructor)
	if err != nil {
		// Dangling instructor references surface as a course without
		// instructor info rather than a failed read.
		s.logger.Warn("course references missing instructor",
			zap.String("course_id", course.CourseID),
			zap.String("instructor_id", course.Instructor.Hex()),
		)
		return detail
	}
	summary := instructor.Summary()
	detail.InstructorInfo = &summary
	return detail
}

func (s *CourseService) mapCourseErr(err error, message string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
