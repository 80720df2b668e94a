package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/edustack/learnhub-api/internal/models"
	appErrors "github.com/edustack/learnhub-api/pkg/errors"
)

func TestProgressServiceUpsert(t *testing.T) {
	students := newFakeStudentRepo()
	student := &models.Student{Name: "Lin", Email: "lin@example.com"}
	require.NoError(t, students.Insert(context.Background(), student))
	courseID := primitive.NewObjectID()

	svc := NewProgressService(students, nil, nil)
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	updated, err := svc.Update(context.Background(), student.ID.Hex(), ProgressRequest{CourseID: courseID.Hex(), CompletedPercentage: 25})
	require.NoError(t, err)
	require.Len(t, updated.Progress, 1)
	assert.Equal(t, 25.0, updated.Progress[0].CompletedPercentage)
	assert.Equal(t, first, updated.Progress[0].LastActiveDate)

	// A second update for the same course overwrites in place.
	second := first.Add(48 * time.Hour)
	svc.now = func() time.Time { return second }
	updated, err = svc.Update(context.Background(), student.ID.Hex(), ProgressRequest{CourseID: courseID.Hex(), CompletedPercentage: 70})
	require.NoError(t, err)
	require.Len(t, updated.Progress, 1)
	assert.Equal(t, 70.0, updated.Progress[0].CompletedPercentage)
	assert.Equal(t, second, updated.Progress[0].LastActiveDate)

	other := primitive.NewObjectID()
	updated, err = svc.Update(context.Background(), student.ID.Hex(), ProgressRequest{CourseID: other.Hex(), CompletedPercentage: 10})
	require.NoError(t, err)
	assert.Len(t, updated.Progress, 2)
}

func TestProgressServiceStudentNotFound(t *testing.T) {
	svc := NewProgressService(newFakeStudentRepo(), nil, nil)

	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), ProgressRequest{CourseID: primitive.NewObjectID().Hex(), CompletedPercentage: 50})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestProgressServiceValidation(t *testing.T) {
	students := newFakeStudentRepo()
	student := &models.Student{Name: "Lin", Email: "lin@example.com"}
	require.NoError(t, students.Insert(context.Background(), student))
	svc := NewProgressService(students, nil, nil)

	_, err := svc.Update(context.Background(), student.ID.Hex(), ProgressRequest{CourseID: primitive.NewObjectID().Hex(), CompletedPercentage: 101})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)

	_, err = svc.Update(context.Background(), student.ID.Hex(), ProgressRequest{CourseID: primitive.NewObjectID().Hex(), CompletedPercentage: -1})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)

	_, err = svc.Update(context.Background(), student.ID.Hex(), ProgressRequest{CompletedPercentage: 50})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}
