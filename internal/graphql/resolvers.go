package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/edustack/learnhub-api/internal/models"
	"github.com/edustack/learnhub-api/internal/service"
)

func queryFields(deps Dependencies, courseType, instructorType, studentType, recommendedCourseType *graphql.Object) graphql.Fields {
	return graphql.Fields{
		"getCourses": &graphql.Field{
			Type: graphql.NewList(courseType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return deps.Courses.List(p.Context)
			},
		},
		"getCourse": &graphql.Field{
			Type: courseType,
			Args: graphql.FieldConfigArgument{
				"courseId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return deps.Courses.GetByCourseID(p.Context, p.Args["courseId"].(string))
			},
		},
		"getInstructors": &graphql.Field{
			Type: graphql.NewList(instructorType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return deps.Instructors.List(p.Context)
			},
		},
		"getInstructor": &graphql.Field{
			Type: instructorType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return deps.Instructors.Get(p.Context, p.Args["id"].(string))
			},
		},
		"getStudents": &graphql.Field{
			Type: graphql.NewList(studentType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return deps.Students.List(p.Context)
			},
		},
		"getStudent": &graphql.Field{
			Type: studentType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return deps.Students.Get(p.Context, p.Args["id"].(string))
			},
		},
		"getRecommendations": &graphql.Field{
			Type: graphql.NewList(recommendedCourseType),
			Args: graphql.FieldConfigArgument{
				"courseId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if deps.Recommender == nil {
					return []service.RecommendedCourse{}, nil
				}
				result := deps.Recommender.Fetch(p.Context, p.Args["courseId"].(string))
				return result.Courses, nil
			},
		},
	}
}

func mutationFields(deps Dependencies, courseType, instructorType, studentType, enrollmentResultType *graphql.Object) graphql.Fields {
	return graphql.Fields{
		"addCourse": &graphql.Field{
			Type: courseType,
			Args: graphql.FieldConfigArgument{
				"courseId":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"name":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"description":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"tags":          &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				"complexity":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"prerequisites": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				"duration":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"rating":        &graphql.ArgumentConfig{Type: graphql.Float},
				"instructor":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				req := service.CreateCourseRequest{
					CourseID:      p.Args["courseId"].(string),
					Name:          p.Args["name"].(string),
					Description:   p.Args["description"].(string),
					Tags:          stringSliceArg(p.Args, "tags"),
					Complexity:    p.Args["complexity"].(string),
					Prerequisites: stringSliceArg(p.Args, "prerequisites"),
					Duration:      p.Args["duration"].(string),
					Instructor:    p.Args["instructor"].(string),
				}
				if rating, ok := p.Args["rating"].(float64); ok {
					req.Rating = rating
				}
				return deps.Courses.Create(p.Context, req)
			},
		},
		"updateCourse": &graphql.Field{
			Type: courseType,
			Args: graphql.FieldConfigArgument{
				"courseId":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"name":          &graphql.ArgumentConfig{Type: graphql.String},
				"description":   &graphql.ArgumentConfig{Type: graphql.String},
				"tags":          &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				"complexity":    &graphql.ArgumentConfig{Type: graphql.String},
				"prerequisites": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				"duration":      &graphql.ArgumentConfig{Type: graphql.String},
				"rating":        &graphql.ArgumentConfig{Type: graphql.Float},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				patch := models.CourseUpdate{
					Name:        stringPtrArg(p.Args, "name"),
					Description: stringPtrArg(p.Args, "description"),
					Complexity:  stringPtrArg(p.Args, "complexity"),
					Duration:    stringPtrArg(p.Args, "duration"),
				}
				if _, ok := p.Args["tags"]; ok {
					tags := stringSliceArg(p.Args, "tags")
					patch.Tags = &tags
				}
				if _, ok := p.Args["prerequisites"]; ok {
					prereqs := stringSliceArg(p.Args, "prerequisites")
					patch.Prerequisites = &prereqs
				}
				if rating, ok := p.Args["rating"].(float64); ok {
					patch.Rating = &rating
				}
				return deps.Courses.Update(p.Context, p.Args["courseId"].(string), patch)
			},
		},
		"deleteCourse": &graphql.Field{
			Type: graphql.String,
			Args: graphql.FieldConfigArgument{
				"courseId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if err := deps.Courses.Delete(p.Context, p.Args["courseId"].(string)); err != nil {
					return nil, err
				}
				return "Course deleted successfully", nil
			},
		},
		"enrollStudentInCourse": &graphql.Field{
			Type: enrollmentResultType,
			Args: graphql.FieldConfigArgument{
				"studentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"courseId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return deps.Enrollments.Enroll(p.Context, p.Args["studentId"].(string), service.EnrollRequest{
					CourseID: p.Args["courseId"].(string),
				})
			},
		},
		"createStudent": &graphql.Field{
			Type: graphql.NewNonNull(studentType),
			Args: graphql.FieldConfigArgument{
				"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return deps.Students.Create(p.Context, service.CreateStudentRequest{
					Name:  p.Args["name"].(string),
					Email: p.Args["email"].(string),
				})
			},
		},
		"updateStudent": &graphql.Field{
			Type: graphql.NewNonNull(studentType),
			Args: graphql.FieldConfigArgument{
				"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"name":  &graphql.ArgumentConfig{Type: graphql.String},
				"email": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				patch := models.StudentUpdate{
					Name:  stringPtrArg(p.Args, "name"),
					Email: stringPtrArg(p.Args, "email"),
				}
				return deps.Students.Update(p.Context, p.Args["id"].(string), patch)
			},
		},
		"deleteStudent": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if err := deps.Students.Delete(p.Context, p.Args["id"].(string)); err != nil {
					return nil, err
				}
				return "Student deleted successfully", nil
			},
		},
		"createInstructor": &graphql.Field{
			Type: graphql.NewNonNull(instructorType),
			Args: graphql.FieldConfigArgument{
				"name":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"email":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"expertise": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return deps.Instructors.Create(p.Context, service.CreateInstructorRequest{
					Name:      p.Args["name"].(string),
					Email:     p.Args["email"].(string),
					Expertise: stringSliceArg(p.Args, "expertise"),
				})
			},
		},
		"updateInstructor": &graphql.Field{
			Type: graphql.NewNonNull(instructorType),
			Args: graphql.FieldConfigArgument{
				"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"name":  &graphql.ArgumentConfig{Type: graphql.String},
				"email": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				patch := models.InstructorUpdate{
					Name:  stringPtrArg(p.Args, "name"),
					Email: stringPtrArg(p.Args, "email"),
				}
				return deps.Instructors.Update(p.Context, p.Args["id"].(string), patch)
			},
		},
		"deleteInstructor": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if err := deps.Instructors.Delete(p.Context, p.Args["id"].(string)); err != nil {
					return nil, err
				}
				return "Instructor deleted successfully", nil
			},
		},
	}
}

func stringPtrArg(args map[string]interface{}, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}

func stringSliceArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
