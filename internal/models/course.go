package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is a catalog entry. CourseID is the human-assigned business key,
// distinct from the storage identity; Instructor references the owning
// instructor document, whose CoursesCreated list is the maintained inverse.
type Course struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CourseID      string             `json:"courseId" bson:"courseId"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Tags          []string           `json:"tags" bson:"tags"`
	Complexity    string             `json:"complexity" bson:"complexity"`
	Prerequisites []string           `json:"prerequisites" bson:"prerequisites"`
	Duration      string             `json:"duration" bson:"duration"`
	Rating        float64            `json:"rating" bson:"rating"`
	Instructor    primitive.ObjectID `json:"instructor" bson:"instructor"`
}

// CourseSummary is the projection embedded into instructor and student
// responses in place of a bare reference.
type CourseSummary struct {
	ID       primitive.ObjectID `json:"id"`
	CourseID string             `json:"courseId"`
	Name     string             `json:"name"`
}

// CourseDetail is a course together with its instructor projection.
type CourseDetail struct {
	Course
	InstructorInfo *InstructorSummary `json:"instructorInfo,omitempty"`
}

// CourseUpdate carries the mutable course fields for a single-document merge.
// Nil fields are left untouched.
type CourseUpdate struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	Complexity    *string   `json:"complexity,omitempty"`
	Prerequisites *[]string `json:"prerequisites,omitempty"`
	Duration      *string   `json:"duration,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
}

// Summary projects a course into its embedded form.
func (c Course) Summary() CourseSummary {
	return CourseSummary{ID: c.ID, CourseID: c.CourseID, Name: c.Name}
}
