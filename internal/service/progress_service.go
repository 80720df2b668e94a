package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/edustack/learnhub-api/internal/models"
	appErrors "github.com/edustack/learnhub-api/pkg/errors"
)

type progressRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	SetProgress(ctx context.Context, studentID, courseID primitive.ObjectID, percentage float64, at time.Time) (bool, error)
	PushProgress(ctx context.Context, studentID primitive.ObjectID, record models.ProgressRecord) error
}

// ProgressRequest carries a progress update for one course.
type ProgressRequest struct {
	CourseID            string  `json:"courseId" validate:"required"`
	CompletedPercentage float64 `json:"completedPercentage" validate:"min=0,max=100"`
}

// ProgressService upserts per-course progress records within a student's
// progress array, keyed by course reference: an existing record is
// overwritten, otherwise a new one is appended. Either path stamps
// lastActiveDate with the current time.
type ProgressService struct {
	students  progressRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewProgressService constructs ProgressService.
func NewProgressService(students progressRepository, validate *validator.Validate, logger *zap.Logger) *ProgressService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{students: students, validator: validate, logger: logger, now: time.Now}
}

// Update upserts the student's progress record for the given course and
// returns the updated student.
func (s *ProgressService) Update(ctx context.Context, studentID string, req ProgressRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}
	sid, err := parseObjectID(studentID, "invalid student id")
	if err != nil {
		return nil, err
	}
	cid, err := parseObjectID(req.CourseID, "invalid course id")
	if err != nil {
		return nil, err
	}

	if _, err := s.students.FindByID(ctx, sid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	at := s.now().UTC()
	matched, err := s.students.SetProgress(ctx, sid, cid, req.CompletedPercentage, at)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
	}
	if !matched {
		record := models.ProgressRecord{Course: cid, CompletedPercentage: req.CompletedPercentage, LastActiveDate: at}
		if err := s.students.PushProgress(ctx, sid, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record progress")
		}
	}

	student, err := s.students.FindByID(ctx, sid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload student")
	}
	return student, nil
}
