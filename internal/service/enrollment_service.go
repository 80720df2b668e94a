package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/edustack/learnhub-api/internal/models"
	appErrors "github.com/edustack/learnhub-api/pkg/errors"
	"github.com/edustack/learnhub-api/pkg/mailer"
)

type studentEnroller interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	AddEnrollment(ctx context.Context, studentID, courseID primitive.ObjectID) (*models.Student, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
}

type recommendationFetcher interface {
	Fetch(ctx context.Context, courseID string) RecommendationResult
}

type sideEffectObserver interface {
	ObserveEmail(ok bool)
	ObserveRecommendationFetch(ok bool)
}

// EnrollRequest carries the course a student wants to join.
type EnrollRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

// EnrollmentResult pairs the updated student with the best-effort
// recommendation list (possibly empty).
type EnrollmentResult struct {
	Student         *models.Student     `json:"student"`
	Recommendations []RecommendedCourse `json:"recommendations"`
}

// EnrollmentService couples the one durable mutation (appending to the
// student's enrolledCourses) with two best-effort external side effects.
// The persistence step always precedes both side effects, and neither side
// effect failing can roll the enrollment back. Two concurrent enrolls for
// the same student and course can both pass the duplicate check before
// either persists; that race is inherent to the check-then-push protocol
// and is not guarded here.
type EnrollmentService struct {
	students    studentEnroller
	courses     courseFinder
	recommender recommendationFetcher
	mail        mailer.Mailer
	metrics     sideEffectObserver
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. The mailer,
// recommender, and metrics observer may be nil.
func NewEnrollmentService(students studentEnroller, courses courseFinder, recommender recommendationFetcher, mail mailer.Mailer, metrics sideEffectObserver, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		students:    students,
		courses:     courses,
		recommender: recommender,
		mail:        mail,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Enroll registers the student in the course, then fetches recommendations
// and sends a confirmation email. Both external calls degrade to empty/no-op
// on failure; a recommendations failure never blocks the email.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID string, req EnrollRequest) (*EnrollmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	sid, err := parseObjectID(studentID, "invalid student id")
	if err != nil {
		return nil, err
	}
	cid, err := parseObjectID(req.CourseID, "invalid course id")
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	course, err := s.courses.FindByID(ctx, cid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if student.IsEnrolledIn(cid) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this course")
	}

	// The only must-succeed step. Everything after this is best effort.
	updated, err := s.students.AddEnrollment(ctx, sid, cid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}

	recommendations := s.fetchRecommendations(ctx, req.CourseID)
	s.sendConfirmation(ctx, updated, course)

	return &EnrollmentResult{Student: updated, Recommendations: recommendations}, nil
}

func (s *EnrollmentService) fetchRecommendations(ctx context.Context, courseID string) []RecommendedCourse {
	if s.recommender == nil {
		return []RecommendedCourse{}
	}
	result := s.recommender.Fetch(ctx, courseID)
	if s.metrics != nil {
		s.metrics.ObserveRecommendationFetch(result.OK())
	}
	if !result.OK() {
		s.logger.Warn("enrollment recommendations unavailable",
			zap.String("course_id", courseID),
			zap.Error(result.Err),
		)
	}
	return result.Courses
}

func (s *EnrollmentService) sendConfirmation(ctx context.Context, student *models.Student, course *models.Course) {
	if s.mail == nil {
		return
	}
	subject := fmt.Sprintf("Successfully Enrolled in %s", course.Name)
	text := fmt.Sprintf("You have successfully enrolled in the course: %s.", course.Name)
	html := fmt.Sprintf("<p>You have successfully enrolled in the course: <strong>%s</strong>.</p><p>Happy Learning!</p>", course.Name)

	err := s.mail.Send(ctx, student.Email, subject, text, html)
	if s.metrics != nil {
		s.metrics.ObserveEmail(err == nil)
	}
	if err != nil {
		s.logger.Warn("enrollment confirmation email failed",
			zap.String("student_id", student.ID.Hex()),
			zap.String("course_id", course.CourseID),
			zap.Error(err),
		)
	}
}
