package graphql

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/edustack/learnhub-api/internal/models"
	"github.com/edustack/learnhub-api/internal/service"
)

// RecommendationFetcher is the slice of the recommendation client the schema
// needs for the getRecommendations query.
type RecommendationFetcher interface {
	Fetch(ctx context.Context, courseID string) service.RecommendationResult
}

// Dependencies groups the services the schema resolves against.
type Dependencies struct {
	Courses     *service.CourseService
	Instructors *service.InstructorService
	Students    *service.StudentService
	Enrollments *service.EnrollmentService
	Recommender RecommendationFetcher
}

// NewSchema builds the executable schema mirroring the REST operations:
// queries for every read, mutations for create/update/delete/enroll.
func NewSchema(deps Dependencies) (graphql.Schema, error) {
	var courseType *graphql.Object
	var instructorType *graphql.Object
	var studentType *graphql.Object

	recommendedCourseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RecommendedCourse",
		Fields: graphql.Fields{
			"courseId":    &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"tags":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"complexity":  &graphql.Field{Type: graphql.String},
			"duration":    &graphql.Field{Type: graphql.String},
			"rating":      &graphql.Field{Type: graphql.Float},
		},
	})

	courseType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Course",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":            courseField(graphql.NewNonNull(graphql.ID), func(c models.Course) interface{} { return c.ID.Hex() }),
				"courseId":      courseField(graphql.NewNonNull(graphql.String), func(c models.Course) interface{} { return c.CourseID }),
				"name":          courseField(graphql.NewNonNull(graphql.String), func(c models.Course) interface{} { return c.Name }),
				"description":   courseField(graphql.NewNonNull(graphql.String), func(c models.Course) interface{} { return c.Description }),
				"tags":          courseField(graphql.NewNonNull(graphql.NewList(graphql.String)), func(c models.Course) interface{} { return c.Tags }),
				"complexity":    courseField(graphql.NewNonNull(graphql.String), func(c models.Course) interface{} { return c.Complexity }),
				"prerequisites": courseField(graphql.NewNonNull(graphql.NewList(graphql.String)), func(c models.Course) interface{} { return c.Prerequisites }),
				"duration":      courseField(graphql.NewNonNull(graphql.String), func(c models.Course) interface{} { return c.Duration }),
				"rating":        courseField(graphql.NewNonNull(graphql.Float), func(c models.Course) interface{} { return c.Rating }),
				"instructor": &graphql.Field{
					Type: instructorType,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						course, ok := asCourse(p.Source)
						if !ok {
							return nil, nil
						}
						detail, err := deps.Instructors.Get(p.Context, course.Instructor.Hex())
						if err != nil {
							// Dangling references resolve to null, not errors.
							return nil, nil
						}
						return detail, nil
					},
				},
			}
		}),
	})

	instructorType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Instructor",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        instructorField(graphql.NewNonNull(graphql.ID), func(i models.Instructor) interface{} { return i.ID.Hex() }),
				"name":      instructorField(graphql.NewNonNull(graphql.String), func(i models.Instructor) interface{} { return i.Name }),
				"email":     instructorField(graphql.NewNonNull(graphql.String), func(i models.Instructor) interface{} { return i.Email }),
				"expertise": instructorField(graphql.NewList(graphql.String), func(i models.Instructor) interface{} { return i.Expertise }),
				"coursesCreated": &graphql.Field{
					Type: graphql.NewList(courseType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						instructor, ok := asInstructor(p.Source)
						if !ok {
							return nil, nil
						}
						return deps.Courses.ListByIDs(p.Context, instructor.CoursesCreated)
					},
				},
			}
		}),
	})

	progressType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Progress",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"course": &graphql.Field{
					Type: courseType,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						record, ok := p.Source.(models.ProgressRecord)
						if !ok {
							return nil, nil
						}
						details, err := deps.Courses.ListByIDs(p.Context, []primitive.ObjectID{record.Course})
						if err != nil || len(details) == 0 {
							return nil, nil
						}
						return details[0], nil
					},
				},
				"completedPercentage": progressField(graphql.NewNonNull(graphql.Float), func(r models.ProgressRecord) interface{} {
					return r.CompletedPercentage
				}),
				"lastActiveDate": progressField(graphql.String, func(r models.ProgressRecord) interface{} {
					return r.LastActiveDate.Format(time.RFC3339)
				}),
			}
		}),
	})

	studentType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Student",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":    studentField(graphql.NewNonNull(graphql.ID), func(s models.Student) interface{} { return s.ID.Hex() }),
				"name":  studentField(graphql.NewNonNull(graphql.String), func(s models.Student) interface{} { return s.Name }),
				"email": studentField(graphql.NewNonNull(graphql.String), func(s models.Student) interface{} { return s.Email }),
				"enrolledCourses": &graphql.Field{
					Type: graphql.NewList(courseType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						student, ok := asStudent(p.Source)
						if !ok {
							return nil, nil
						}
						return deps.Courses.ListByIDs(p.Context, student.EnrolledCourses)
					},
				},
				"progress": studentField(graphql.NewList(progressType), func(s models.Student) interface{} { return s.Progress }),
			}
		}),
	})

	enrollmentResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "EnrollmentResult",
		Fields: graphql.Fields{
			"student": &graphql.Field{
				Type: graphql.NewNonNull(studentType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					result, ok := p.Source.(*service.EnrollmentResult)
					if !ok {
						return nil, nil
					}
					return result.Student, nil
				},
			},
			"recommendations": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(recommendedCourseType)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					result, ok := p.Source.(*service.EnrollmentResult)
					if !ok {
						return nil, nil
					}
					return result.Recommendations, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: queryFields(deps, courseType, instructorType, studentType, recommendedCourseType),
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Mutation",
		Fields: mutationFields(deps, courseType, instructorType, studentType, enrollmentResultType),
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType, Mutation: mutationType})
}

// The xField helpers cover fields read straight off the source document.
// Relation fields that go back through a service keep hand-written resolvers.

func courseField(typ graphql.Output, get func(models.Course) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			course, ok := asCourse(p.Source)
			if !ok {
				return nil, nil
			}
			return get(course), nil
		},
	}
}

func instructorField(typ graphql.Output, get func(models.Instructor) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			instructor, ok := asInstructor(p.Source)
			if !ok {
				return nil, nil
			}
			return get(instructor), nil
		},
	}
}

func studentField(typ graphql.Output, get func(models.Student) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			student, ok := asStudent(p.Source)
			if !ok {
				return nil, nil
			}
			return get(student), nil
		},
	}
}

func progressField(typ graphql.Output, get func(models.ProgressRecord) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			record, ok := p.Source.(models.ProgressRecord)
			if !ok {
				return nil, nil
			}
			return get(record), nil
		},
	}
}

func asCourse(src interface{}) (models.Course, bool) {
	switch v := src.(type) {
	case models.Course:
		return v, true
	case *models.Course:
		return *v, true
	case models.CourseDetail:
		return v.Course, true
	case *models.CourseDetail:
		return v.Course, true
	}
	return models.Course{}, false
}

func asInstructor(src interface{}) (models.Instructor, bool) {
	switch v := src.(type) {
	case models.Instructor:
		return v, true
	case *models.Instructor:
		return *v, true
	case models.InstructorDetail:
		return v.Instructor, true
	case *models.InstructorDetail:
		return v.Instructor, true
	}
	return models.Instructor{}, false
}

func asStudent(src interface{}) (models.Student, bool) {
	switch v := src.(type) {
	case models.Student:
		return v, true
	case *models.Student:
		return *v, true
	case models.StudentDetail:
		return v.Student, true
	case *models.StudentDetail:
		return v.Student, true
	}
	return models.Student{}, false
}
