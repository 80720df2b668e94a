package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is a learner with an enrollment list and per-course progress.
// Progress holds at most one record per distinct course reference.
type Student struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Email           string               `json:"email" bson:"email"`
	EnrolledCourses []primitive.ObjectID `json:"enrolledCourses" bson:"enrolledCourses"`
	Progress        []ProgressRecord     `json:"progress" bson:"progress"`
}

// ProgressRecord tracks completion of one course by one student.
type ProgressRecord struct {
	Course              primitive.ObjectID `json:"course" bson:"course"`
	CompletedPercentage float64            `json:"completedPercentage" bson:"completedPercentage"`
	LastActiveDate      time.Time          `json:"lastActiveDate" bson:"lastActiveDate"`
}

// StudentDetail is a student with enrolled-course projections.
type StudentDetail struct {
	Student
	Courses []CourseSummary `json:"courses"`
}

// StudentUpdate carries the mutable student fields.
type StudentUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// IsEnrolledIn reports whether the student's enrollment list contains the
// given course identity.
func (s Student) IsEnrolledIn(courseID primitive.ObjectID) bool {
	for _, id := range s.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}
