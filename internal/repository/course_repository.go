package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edustack/learnhub-api/internal/models"
)

// CourseRepository manages persistence for course documents.
type CourseRepository struct {
	collection *mongo.Collection
	timer      opTimer
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *mongo.Database, obs OpObserver) *CourseRepository {
	return &CourseRepository{
		collection: db.Collection("courses"),
		timer:      opTimer{collection: "courses", obs: obs},
	}
}

// Insert stores a new course and assigns its storage identity.
func (r *CourseRepository) Insert(ctx context.Context, course *models.Course) error {
	defer r.timer.track("insert")()
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, course); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// FindByID fetches a course by storage identity.
func (r *CourseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	defer r.timer.track("find_by_id")()
	var course models.Course
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCourseID fetches a course by its business key.
func (r *CourseRepository) FindByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	defer r.timer.track("find_by_course_id")()
	var course models.Course
	if err := r.collection.FindOne(ctx, bson.M{"courseId": courseID}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByName fetches a course by display name.
func (r *CourseRepository) FindByName(ctx context.Context, name string) (*models.Course, error) {
	defer r.timer.track("find_by_name")()
	var course models.Course
	if err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns all courses.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	defer r.timer.track("list")()
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	return courses, nil
}

// FindByIDs returns the courses whose storage identity appears in ids.
func (r *CourseRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	defer r.timer.track("find_by_ids")()
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find courses by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	return courses, nil
}

// UpdateByCourseID merges the non-nil patch fields into the course with the
// given business key and returns the updated document. The instructor
// reference is deliberately not touched here.
func (r *CourseRepository) UpdateByCourseID(ctx context.Context, courseID string, patch models.CourseUpdate) (*models.Course, error) {
	defer r.timer.track("update_by_course_id")()
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.Complexity != nil {
		set["complexity"] = *patch.Complexity
	}
	if patch.Prerequisites != nil {
		set["prerequisites"] = *patch.Prerequisites
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}

	var course models.Course
	// Mongo rejects an empty $set, so an all-nil patch reads the document
	// back unchanged instead.
	if len(set) == 0 {
		if err := r.collection.FindOne(ctx, bson.M{"courseId": courseID}).Decode(&course); err != nil {
			return nil, err
		}
		return &course, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"courseId": courseID}, bson.M{"$set": set}, opts).Decode(&course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteByID removes a course by storage identity.
func (r *CourseRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	defer r.timer.track("delete_by_id")()
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// DeleteByCourseID removes a course by business key and returns the deleted
// document so the caller can unlink its instructor back-reference.
func (r *CourseRepository) DeleteByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	defer r.timer.track("delete_by_course_id")()
	var course models.Course
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"courseId": courseID}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteByInstructor bulk-deletes every course owned by the instructor.
func (r *CourseRepository) DeleteByInstructor(ctx context.Context, instructorID primitive.ObjectID) (int64, error) {
	defer r.timer.track("delete_by_instructor")()
	result, err := r.collection.DeleteMany(ctx, bson.M{"instructor": instructorID})
	if err != nil {
		return 0, fmt.Errorf("delete courses by instructor: %w", err)
	}
	return result.DeletedCount, nil
}
