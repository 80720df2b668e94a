package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edustack/learnhub-api/internal/models"
)

// StudentRepository manages persistence for student documents, including the
// enrolledCourses and progress arrays.
type StudentRepository struct {
	collection *mongo.Collection
	timer      opTimer
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *mongo.Database, obs OpObserver) *StudentRepository {
	return &StudentRepository{
		collection: db.Collection("students"),
		timer:      opTimer{collection: "students", obs: obs},
	}
}

// Insert stores a new student and assigns its storage identity.
func (r *StudentRepository) Insert(ctx context.Context, student *models.Student) error {
	defer r.timer.track("insert")()
	if student.ID.IsZero() {
		student.ID = primitive.NewObjectID()
	}
	if student.EnrolledCourses == nil {
		student.EnrolledCourses = []primitive.ObjectID{}
	}
	if student.Progress == nil {
		student.Progress = []models.ProgressRecord{}
	}
	if _, err := r.collection.InsertOne(ctx, student); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// FindByID fetches a student by storage identity.
func (r *StudentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	defer r.timer.track("find_by_id")()
	var student models.Student
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&student); err != nil {
		return nil, err
	}
	return &student, nil
}

// List returns all students.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	defer r.timer.track("list")()
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer cursor.Close(ctx)

	var students []models.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return students, nil
}

// UpdateByID merges the non-nil patch fields and returns the updated document.
func (r *StudentRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.StudentUpdate) (*models.Student, error) {
	defer r.timer.track("update_by_id")()
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}

	var student models.Student
	// Mongo rejects an empty $set, so an all-nil patch reads the document
	// back unchanged instead.
	if len(set) == 0 {
		if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&student); err != nil {
			return nil, err
		}
		return &student, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&student)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// DeleteByID removes a student. A missing student is reported as
// mongo.ErrNoDocuments.
func (r *StudentRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	defer r.timer.track("delete_by_id")()
	var student models.Student
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&student); err != nil {
		return err
	}
	return nil
}

// AddEnrollment appends a course identity to the student's enrolledCourses
// array and returns the updated student.
func (r *StudentRepository) AddEnrollment(ctx context.Context, studentID, courseID primitive.ObjectID) (*models.Student, error) {
	defer r.timer.track("add_enrollment")()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var student models.Student
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": studentID},
		bson.M{"$push": bson.M{"enrolledCourses": courseID}},
		opts,
	).Decode(&student)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// SetProgress overwrites the progress record matching the course via the
// positional operator. It reports whether a record matched; a false return
// with nil error means the caller should push a fresh record instead.
func (r *StudentRepository) SetProgress(ctx context.Context, studentID, courseID primitive.ObjectID, percentage float64, at time.Time) (bool, error) {
	defer r.timer.track("set_progress")()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": studentID, "progress.course": courseID},
		bson.M{"$set": bson.M{
			"progress.$.completedPercentage": percentage,
			"progress.$.lastActiveDate":      at,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("set progress: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// PushProgress appends a new progress record for a course the student has no
// record for yet. A missing student is reported as mongo.ErrNoDocuments.
func (r *StudentRepository) PushProgress(ctx context.Context, studentID primitive.ObjectID, record models.ProgressRecord) error {
	defer r.timer.track("push_progress")()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": studentID},
		bson.M{"$push": bson.M{"progress": record}},
	)
	if err != nil {
		return fmt.Errorf("push progress: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
