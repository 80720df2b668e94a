package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edustack/learnhub-api/internal/models"
	appErrors "github.com/edustack/learnhub-api/pkg/errors"
)

type fakeCourseRepo struct {
	courses   map[primitive.ObjectID]models.Course
	insertErr error
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[primitive.ObjectID]models.Course)}
}

func (f *fakeCourseRepo) Insert(ctx context.Context, course *models.Course) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	if course, ok := f.courses[id]; ok {
		return &course, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCourseRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	var out []models.Course
	for _, id := range ids {
		if course, ok := f.courses[id]; ok {
			out = append(out, course)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) FindByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	for _, course := range f.courses {
		if course.CourseID == courseID {
			c := course
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCourseRepo) FindByName(ctx context.Context, name string) (*models.Course, error) {
	for _, course := range f.courses {
		if course.Name == name {
			c := course
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(f.courses))
	for _, course := range f.courses {
		out = append(out, course)
	}
	return out, nil
}

func (f *fakeCourseRepo) UpdateByCourseID(ctx context.Context, courseID string, patch models.CourseUpdate) (*models.Course, error) {
	for id, course := range f.courses {
		if course.CourseID != courseID {
			continue
		}
		if patch.Name != nil {
			course.Name = *patch.Name
		}
		if patch.Description != nil {
			course.Description = *patch.Description
		}
		if patch.Tags != nil {
			course.Tags = *patch.Tags
		}
		if patch.Complexity != nil {
			course.Complexity = *patch.Complexity
		}
		if patch.Prerequisites != nil {
			course.Prerequisites = *patch.Prerequisites
		}
		if patch.Duration != nil {
			course.Duration = *patch.Duration
		}
		if patch.Rating != nil {
			course.Rating = *patch.Rating
		}
		f.courses[id] = course
		return &course, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCourseRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	delete(f.courses, id)
	return nil
}

func (f *fakeCourseRepo) DeleteByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	for id, course := range f.courses {
		if course.CourseID == courseID {
			delete(f.courses, id)
			c := course
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCourseRepo) DeleteByInstructor(ctx context.Context, instructorID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, course := range f.courses {
		if course.Instructor == instructorID {
			delete(f.courses, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeInstructorRepo struct {
	instructors  map[primitive.ObjectID]models.Instructor
	addRefErr    error
	removeRefErr error
}

func newFakeInstructorRepo() *fakeInstructorRepo {
	return &fakeInstructorRepo{instructors: make(map[primitive.ObjectID]models.Instructor)}
}

func (f *fakeInstructorRepo) Insert(ctx context.Context, instructor *models.Instructor) error {
	if instructor.ID.IsZero() {
		instructor.ID = primitive.NewObjectID()
	}
	if instructor.CoursesCreated == nil {
		instructor.CoursesCreated = []primitive.ObjectID{}
	}
	f.instructors[instructor.ID] = *instructor
	return nil
}

func (f *fakeInstructorRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error) {
	if instructor, ok := f.instructors[id]; ok {
		return &instructor, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeInstructorRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Instructor, error) {
	var out []models.Instructor
	for _, id := range ids {
		if instructor, ok := f.instructors[id]; ok {
			out = append(out, instructor)
		}
	}
	return out, nil
}

func (f *fakeInstructorRepo) List(ctx context.Context) ([]models.Instructor, error) {
	out := make([]models.Instructor, 0, len(f.instructors))
	for _, instructor := range f.instructors {
		out = append(out, instructor)
	}
	return out, nil
}

func (f *fakeInstructorRepo) UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.InstructorUpdate) (*models.Instructor, error) {
	instructor, ok := f.instructors[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if patch.Name != nil {
		instructor.Name = *patch.Name
	}
	if patch.Email != nil {
		instructor.Email = *patch.Email
	}
	if patch.Expertise != nil {
		instructor.Expertise = *patch.Expertise
	}
	f.instructors[id] = instructor
	return &instructor, nil
}

func (f *fakeInstructorRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error) {
	instructor, ok := f.instructors[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(f.instructors, id)
	return &instructor, nil
}

func (f *fakeInstructorRepo) AddCourseRef(ctx context.Context, instructorID, courseID primitive.ObjectID) error {
	if f.addRefErr != nil {
		return f.addRefErr
	}
	instructor, ok := f.instructors[instructorID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	instructor.CoursesCreated = append(instructor.CoursesCreated, courseID)
	f.instructors[instructorID] = instructor
	return nil
}

func (f *fakeInstructorRepo) RemoveCourseRef(ctx context.Context, instructorID, courseID primitive.ObjectID) error {
	if f.removeRefErr != nil {
		return f.removeRefErr
	}
	instructor, ok := f.instructors[instructorID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	kept := instructor.CoursesCreated[:0]
	for _, id := range instructor.CoursesCreated {
		if id != courseID {
			kept = append(kept, id)
		}
	}
	instructor.CoursesCreated = kept
	f.instructors[instructorID] = instructor
	return nil
}

func seedInstructor(t *testing.T, repo *fakeInstructorRepo) models.Instructor {
	t.Helper()
	instructor := &models.Instructor{Name: "Ada Lovelace", Email: "ada@example.com", Expertise: []string{"mathematics"}}
	require.NoError(t, repo.Insert(context.Background(), instructor))
	return *instructor
}

func validCourseRequest(instructorID string) CreateCourseRequest {
	return CreateCourseRequest{
		CourseID:    "GO-101",
		Name:        "Intro to Go",
		Description: "Concurrency from first principles",
		Tags:        []string{"go", "backend"},
		Complexity:  "beginner",
		Duration:    "6 weeks",
		Rating:      4.5,
		Instructor:  instructorID,
	}
}

func TestCourseServiceCreateLinksInstructor(t *testing.T) {
	courses := newFakeCourseRepo()
	instructors := newFakeInstructorRepo()
	instructor := seedInstructor(t, instructors)
	svc := NewCourseService(courses, instructors, nil, nil)

	detail, err := svc.Create(context.Background(), validCourseRequest(instructor.ID.Hex()))
	require.NoError(t, err)
	require.NotNil(t, detail.InstructorInfo)
	assert.Equal(t, "Ada Lovelace", detail.InstructorInfo.Name)
	assert.False(t, detail.ID.IsZero())

	stored := instructors.instructors[instructor.ID]
	require.Len(t, stored.CoursesCreated, 1)
	assert.Equal(t, detail.ID, stored.CoursesCreated[0])
}

func TestCourseServiceCreateUnknownInstructorRollsBack(t *testing.T) {
	courses := newFakeCourseRepo()
	instructors := newFakeInstructorRepo()
	svc := NewCourseService(courses, instructors, nil, nil)

	_, err := svc.Create(context.Background(), validCourseRequest(primitive.NewObjectID().Hex()))
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
	assert.Empty(t, courses.courses, "insert must be compensated")
}

func TestCourseServiceCreateBackrefFailureStillSucceeds(t *testing.T) {
	courses := newFakeCourseRepo()
	instructors := newFakeInstructorRepo()
	instructor := seedInstructor(t, instructors)
	instructors.addRefErr = errors.New("write concern timeout")
	svc := NewCourseService(courses, instructors, nil, nil)

	detail, err := svc.Create(context.Background(), validCourseRequest(instructor.ID.Hex()))
	require.NoError(t, err)
	assert.Len(t, courses.courses, 1)
	assert.NotNil(t, detail.InstructorInfo)
}

func TestCourseServiceCreateValidation(t *testing.T) {
	svc := NewCourseService(newFakeCourseRepo(), newFakeInstructorRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{Name: "No key"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)

	_, err = svc.Create(context.Background(), validCourseRequest("not-a-hex-id"))
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestCourseServiceDeleteUnlinksInstructor(t *testing.T) {
	courses := newFakeCourseRepo()
	instructors := newFakeInstructorRepo()
	instructor := seedInstructor(t, instructors)
	svc := NewCourseService(courses, instructors, nil, nil)

	detail, err := svc.Create(context.Background(), validCourseRequest(instructor.ID.Hex()))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "GO-101"))
	assert.Empty(t, courses.courses)
	assert.Empty(t, instructors.instructors[instructor.ID].CoursesCreated)
	assert.NotContains(t, instructors.instructors[instructor.ID].CoursesCreated, detail.ID)

	err = svc.Delete(context.Background(), "GO-101")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCourseServiceDeleteToleratesMissingInstructor(t *testing.T) {
	courses := newFakeCourseRepo()
	instructors := newFakeInstructorRepo()
	course := &models.Course{CourseID: "ORPHAN-1", Name: "Orphaned", Instructor: primitive.NewObjectID()}
	require.NoError(t, courses.Insert(context.Background(), course))
	svc := NewCourseService(courses, instructors, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "ORPHAN-1"))
	assert.Empty(t, courses.courses)
}

func TestCourseServiceUpdate(t *testing.T) {
	courses := newFakeCourseRepo()
	instructors := newFakeInstructorRepo()
	instructor := seedInstructor(t, instructors)
	svc := NewCourseService(courses, instructors, nil, nil)

	_, err := svc.Create(context.Background(), validCourseRequest(instructor.ID.Hex()))
	require.NoError(t, err)

	name := "Advanced Go"
	rating := 4.9
	updated, err := svc.Update(context.Background(), "GO-101", models.CourseUpdate{Name: &name, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, "Advanced Go", updated.Name)
	assert.Equal(t, 4.9, updated.Rating)
	assert.Equal(t, "Concurrency from first principles", updated.Description)

	_, err = svc.Update(context.Background(), "NOPE-404", models.CourseUpdate{Name: &name})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCourseServiceListAttachesInstructorSummaries(t *testing.T) {
	courses := newFakeCourseRepo()
	instructors := newFakeInstructorRepo()
	instructor := seedInstructor(t, instructors)
	svc := NewCourseService(courses, instructors, nil, nil)

	_, err := svc.Create(context.Background(), validCourseRequest(instructor.ID.Hex()))
	require.NoError(t, err)

	details, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].InstructorInfo)
	assert.Equal(t, instructor.ID, details[0].InstructorInfo.ID)
}

func TestCourseServiceGetByNameDanglingInstructor(t *testing.T) {
	courses := newFakeCourseRepo()
	instructors := newFakeInstructorRepo()
	course := &models.Course{CourseID: "GO-201", Name: "Generics", Instructor: primitive.NewObjectID()}
	require.NoError(t, courses.Insert(context.Background(), course))
	svc := NewCourseService(courses, instructors, nil, nil)

	detail, err := svc.GetByName(context.Background(), "Generics")
	require.NoError(t, err)
	assert.Nil(t, detail.InstructorInfo)

	_, err = svc.GetByName(context.Background(), "Unknown")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
