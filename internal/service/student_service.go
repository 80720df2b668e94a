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

type studentRepository interface {
	Insert(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.StudentUpdate) (*models.Student, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

type courseSummarizer interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error)
}

type emailObserver interface {
	ObserveEmail(ok bool)
}

// CreateStudentRequest describes student registration.
type CreateStudentRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// StudentService manages student CRUD. Creation sends a best-effort welcome
// email that never affects the outcome.
type StudentService struct {
	students  studentRepository
	courses   courseSummarizer
	mail      mailer.Mailer
	metrics   emailObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService. The mailer and metrics
// observer may be nil.
func NewStudentService(students studentRepository, courses courseSummarizer, mail mailer.Mailer, metrics emailObserver, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, courses: courses, mail: mail, metrics: metrics, validator: validate, logger: logger}
}

// Create registers a new student and sends a welcome email (best effort).
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{Name: req.Name, Email: req.Email}
	if err := s.students.Insert(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}

	s.sendWelcome(ctx, student)
	return student, nil
}

// List returns all students with enrolled-course projections.
func (s *StudentService) List(ctx context.Context) ([]models.StudentDetail, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	details := make([]models.StudentDetail, 0, len(students))
	for _, student := range students {
		detail, err := s.detail(ctx, student)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// Get fetches a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	oid, err := parseObjectID(id, "invalid student id")
	if err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, oid)
	if err != nil {
		return nil, s.mapErr(err, "failed to load student")
	}
	return s.detail(ctx, *student)
}

// Update merges the patch into the student document.
func (s *StudentService) Update(ctx context.Context, id string, patch models.StudentUpdate) (*models.Student, error) {
	oid, err := parseObjectID(id, "invalid student id")
	if err != nil {
		return nil, err
	}
	student, err := s.students.UpdateByID(ctx, oid, patch)
	if err != nil {
		return nil, s.mapErr(err, "failed to update student")
	}
	return student, nil
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, "invalid student id")
	if err != nil {
		return err
	}
	if err := s.students.DeleteByID(ctx, oid); err != nil {
		return s.mapErr(err, "failed to delete student")
	}
	return nil
}

func (s *StudentService) sendWelcome(ctx context.Context, student *models.Student) {
	if s.mail == nil {
		return
	}
	subject := "Welcome to Our Learning Platform!"
	text := fmt.Sprintf("Hello %s, welcome to our learning platform! We're excited to have you on board.", student.Name)
	html := fmt.Sprintf("<p>Hello <strong>%s</strong>, welcome to our learning platform! We're excited to have you on board.</p>", student.Name)

	err := s.mail.Send(ctx, student.Email, subject, text, html)
	if s.metrics != nil {
		s.metrics.ObserveEmail(err == nil)
	}
	if err != nil {
		s.logger.Warn("welcome email failed",
			zap.String("student_id", student.ID.Hex()),
			zap.Error(err),
		)
	}
}

func (s *StudentService) detail(ctx context.Context, student models.Student) (*models.StudentDetail, error) {
	courses, err := s.courses.FindByIDs(ctx, student.EnrolledCourses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolled courses")
	}
	summaries := make([]models.CourseSummary, 0, len(courses))
	for _, course := range courses {
		summaries = append(summaries, course.Summary())
	}
	return &models.StudentDetail{Student: student, Courses: summaries}, nil
}

func (s *StudentService) mapErr(err error, message string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
