package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Instructor teaches courses. CoursesCreated is a denormalized back-reference
// list: it must agree with every Course whose Instructor field points here,
// and that agreement is maintained by application writes, not by the store.
type Instructor struct {
	ID             primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name           string               `json:"name" bson:"name"`
	Email          string               `json:"email" bson:"email"`
	Expertise      []string             `json:"expertise" bson:"expertise"`
	CoursesCreated []primitive.ObjectID `json:"coursesCreated" bson:"coursesCreated"`
}

// InstructorSummary is the projection embedded into course responses.
type InstructorSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// InstructorDetail is an instructor with its created-course projections.
type InstructorDetail struct {
	Instructor
	Courses []CourseSummary `json:"courses"`
}

// InstructorUpdate carries the mutable instructor fields.
type InstructorUpdate struct {
	Name      *string   `json:"name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Expertise *[]string `json:"expertise,omitempty"`
}

// Summary projects an instructor into its embedded form.
func (i Instructor) Summary() InstructorSummary {
	return InstructorSummary{ID: i.ID, Name: i.Name, Email: i.Email}
}
