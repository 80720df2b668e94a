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

// InstructorRepository manages persistence for instructor documents,
// including the coursesCreated back-reference array.
type InstructorRepository struct {
	collection *mongo.Collection
	timer      opTimer
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *mongo.Database, obs OpObserver) *InstructorRepository {
	return &InstructorRepository{
		collection: db.Collection("instructors"),
		timer:      opTimer{collection: "instructors", obs: obs},
	}
}

// Insert stores a new instructor and assigns its storage identity.
func (r *InstructorRepository) Insert(ctx context.Context, instructor *models.Instructor) error {
	defer r.timer.track("insert")()
	if instructor.ID.IsZero() {
		instructor.ID = primitive.NewObjectID()
	}
	if instructor.CoursesCreated == nil {
		instructor.CoursesCreated = []primitive.ObjectID{}
	}
	if _, err := r.collection.InsertOne(ctx, instructor); err != nil {
		return fmt.Errorf("insert instructor: %w", err)
	}
	return nil
}

// FindByID fetches an instructor by storage identity.
func (r *InstructorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error) {
	defer r.timer.track("find_by_id")()
	var instructor models.Instructor
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&instructor); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// List returns all instructors.
func (r *InstructorRepository) List(ctx context.Context) ([]models.Instructor, error) {
	defer r.timer.track("list")()
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	defer cursor.Close(ctx)

	var instructors []models.Instructor
	if err := cursor.All(ctx, &instructors); err != nil {
		return nil, fmt.Errorf("decode instructors: %w", err)
	}
	return instructors, nil
}

// FindByIDs returns the instructors whose storage identity appears in ids.
func (r *InstructorRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Instructor, error) {
	defer r.timer.track("find_by_ids")()
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find instructors by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var instructors []models.Instructor
	if err := cursor.All(ctx, &instructors); err != nil {
		return nil, fmt.Errorf("decode instructors: %w", err)
	}
	return instructors, nil
}

// UpdateByID merges the non-nil patch fields and returns the updated document.
func (r *InstructorRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.InstructorUpdate) (*models.Instructor, error) {
	defer r.timer.track("update_by_id")()
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Expertise != nil {
		set["expertise"] = *patch.Expertise
	}

	var instructor models.Instructor
	// Mongo rejects an empty $set, so an all-nil patch reads the document
	// back unchanged instead.
	if len(set) == 0 {
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&instructor); err != nil {
			return nil, err
		}
		return &instructor, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&instructor)
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

// DeleteByID removes an instructor and returns the deleted document.
func (r *InstructorRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error) {
	defer r.timer.track("delete_by_id")()
	var instructor models.Instructor
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&instructor); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// AddCourseRef appends a course identity to the instructor's coursesCreated
// array in a single atomic document update.
func (r *InstructorRepository) AddCourseRef(ctx context.Context, instructorID, courseID primitive.ObjectID) error {
	defer r.timer.track("add_course_ref")()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": instructorID},
		bson.M{"$push": bson.M{"coursesCreated": courseID}},
	)
	if err != nil {
		return fmt.Errorf("add course ref: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveCourseRef removes a course identity from coursesCreated by exact
// match. A missing instructor is reported as mongo.ErrNoDocuments.
func (r *InstructorRepository) RemoveCourseRef(ctx context.Context, instructorID, courseID primitive.ObjectID) error {
	defer r.timer.track("remove_course_ref")()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": instructorID},
		bson.M{"$pull": bson.M{"coursesCreated": courseID}},
	)
	if err != nil {
		return fmt.Errorf("remove course ref: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
