package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edustack/learnhub-api/internal/models"
	"github.com/edustack/learnhub-api/internal/service"
)

// In-memory stores standing in for the mongo repositories so handler tests
// can drive real services end to end.

type courseStore struct {
	courses map[primitive.ObjectID]models.Course
}

func newCourseStore() *courseStore {
	return &courseStore{courses: make(map[primitive.ObjectID]models.Course)}
}

func (s *courseStore) Insert(ctx context.Context, course *models.Course) error {
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	s.courses[course.ID] = *course
	return nil
}

func (s *courseStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	if course, ok := s.courses[id]; ok {
		return &course, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (s *courseStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	var out []models.Course
	for _, id := range ids {
		if course, ok := s.courses[id]; ok {
			out = append(out, course)
		}
	}
	return out, nil
}

func (s *courseStore) FindByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	for _, course := range s.courses {
		if course.CourseID == courseID {
			c := course
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *courseStore) FindByName(ctx context.Context, name string) (*models.Course, error) {
	for _, course := range s.courses {
		if course.Name == name {
			c := course
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *courseStore) List(ctx context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(s.courses))
	for _, course := range s.courses {
		out = append(out, course)
	}
	return out, nil
}

func (s *courseStore) UpdateByCourseID(ctx context.Context, courseID string, patch models.CourseUpdate) (*models.Course, error) {
	for id, course := range s.courses {
		if course.CourseID != courseID {
			continue
		}
		if patch.Name != nil {
			course.Name = *patch.Name
		}
		if patch.Description != nil {
			course.Description = *patch.Description
		}
		if patch.Rating != nil {
			course.Rating = *patch.Rating
		}
		s.courses[id] = course
		return &course, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (s *courseStore) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	delete(s.courses, id)
	return nil
}

func (s *courseStore) DeleteByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	for id, course := range s.courses {
		if course.CourseID == courseID {
			delete(s.courses, id)
			c := course
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *courseStore) DeleteByInstructor(ctx context.Context, instructorID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, course := range s.courses {
		if course.Instructor == instructorID {
			delete(s.courses, id)
			deleted++
		}
	}
	return deleted, nil
}

type instructorStore struct {
	instructors map[primitive.ObjectID]models.Instructor
}

func newInstructorStore() *instructorStore {
	return &instructorStore{instructors: make(map[primitive.ObjectID]models.Instructor)}
}

func (s *instructorStore) Insert(ctx context.Context, instructor *models.Instructor) error {
	if instructor.ID.IsZero() {
		instructor.ID = primitive.NewObjectID()
	}
	if instructor.CoursesCreated == nil {
		instructor.CoursesCreated = []primitive.ObjectID{}
	}
	s.instructors[instructor.ID] = *instructor
	return nil
}

func (s *instructorStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error) {
	if instructor, ok := s.instructors[id]; ok {
		return &instructor, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (s *instructorStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Instructor, error) {
	var out []models.Instructor
	for _, id := range ids {
		if instructor, ok := s.instructors[id]; ok {
			out = append(out, instructor)
		}
	}
	return out, nil
}

func (s *instructorStore) List(ctx context.Context) ([]models.Instructor, error) {
	out := make([]models.Instructor, 0, len(s.instructors))
	for _, instructor := range s.instructors {
		out = append(out, instructor)
	}
	return out, nil
}

func (s *instructorStore) UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.InstructorUpdate) (*models.Instructor, error) {
	instructor, ok := s.instructors[id]
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
	s.instructors[id] = instructor
	return &instructor, nil
}

func (s *instructorStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error) {
	instructor, ok := s.instructors[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(s.instructors, id)
	return &instructor, nil
}

func (s *instructorStore) AddCourseRef(ctx context.Context, instructorID, courseID primitive.ObjectID) error {
	instructor, ok := s.instructors[instructorID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	instructor.CoursesCreated = append(instructor.CoursesCreated, courseID)
	s.instructors[instructorID] = instructor
	return nil
}

func (s *instructorStore) RemoveCourseRef(ctx context.Context, instructorID, courseID primitive.ObjectID) error {
	instructor, ok := s.instructors[instructorID]
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
	s.instructors[instructorID] = instructor
	return nil
}

type studentStore struct {
	students map[primitive.ObjectID]models.Student
}

func newStudentStore() *studentStore {
	return &studentStore{students: make(map[primitive.ObjectID]models.Student)}
}

func (s *studentStore) Insert(ctx context.Context, student *models.Student) error {
	if student.ID.IsZero() {
		student.ID = primitive.NewObjectID()
	}
	if student.EnrolledCourses == nil {
		student.EnrolledCourses = []primitive.ObjectID{}
	}
	if student.Progress == nil {
		student.Progress = []models.ProgressRecord{}
	}
	s.students[student.ID] = *student
	return nil
}

func (s *studentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	if student, ok := s.students[id]; ok {
		return &student, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (s *studentStore) List(ctx context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(s.students))
	for _, student := range s.students {
		out = append(out, student)
	}
	return out, nil
}

func (s *studentStore) UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.StudentUpdate) (*models.Student, error) {
	student, ok := s.students[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if patch.Name != nil {
		student.Name = *patch.Name
	}
	if patch.Email != nil {
		student.Email = *patch.Email
	}
	s.students[id] = student
	return &student, nil
}

func (s *studentStore) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := s.students[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.students, id)
	return nil
}

func (s *studentStore) AddEnrollment(ctx context.Context, studentID, courseID primitive.ObjectID) (*models.Student, error) {
	student, ok := s.students[studentID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	student.EnrolledCourses = append(student.EnrolledCourses, courseID)
	s.students[studentID] = student
	return &student, nil
}

func (s *studentStore) SetProgress(ctx context.Context, studentID, courseID primitive.ObjectID, percentage float64, at time.Time) (bool, error) {
	student, ok := s.students[studentID]
	if !ok {
		return false, nil
	}
	for i, record := range student.Progress {
		if record.Course == courseID {
			student.Progress[i].CompletedPercentage = percentage
			student.Progress[i].LastActiveDate = at
			s.students[studentID] = student
			return true, nil
		}
	}
	return false, nil
}

func (s *studentStore) PushProgress(ctx context.Context, studentID primitive.ObjectID, record models.ProgressRecord) error {
	student, ok := s.students[studentID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	student.Progress = append(student.Progress, record)
	s.students[studentID] = student
	return nil
}

type stubRecommender struct {
	result service.RecommendationResult
}

func (s *stubRecommender) Fetch(ctx context.Context, courseID string) service.RecommendationResult {
	if s.result.Courses == nil {
		s.result.Courses = []service.RecommendedCourse{}
	}
	return s.result
}

type stubMailer struct {
	sent int
	err  error
}

func (s *stubMailer) Send(ctx context.Context, to, subject, text, html string) error {
	if s.err != nil {
		return s.err
	}
	s.sent++
	return nil
}

type testEnv struct {
	router      *gin.Engine
	courses     *courseStore
	instructors *instructorStore
	students    *studentStore
	mail        *stubMailer
	recommender *stubRecommender
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		courses:     newCourseStore(),
		instructors: newInstructorStore(),
		students:    newStudentStore(),
		mail:        &stubMailer{},
		recommender: &stubRecommender{},
	}

	courseSvc := service.NewCourseService(env.courses, env.instructors, nil, nil)
	instructorSvc := service.NewInstructorService(env.instructors, env.courses, nil, nil)
	studentSvc := service.NewStudentService(env.students, env.courses, env.mail, nil, nil, nil)
	enrollSvc := service.NewEnrollmentService(env.students, env.courses, env.recommender, env.mail, nil, nil, nil)
	progressSvc := service.NewProgressService(env.students, nil, nil)

	courseHandler := NewCourseHandler(courseSvc)
	instructorHandler := NewInstructorHandler(instructorSvc)
	studentHandler := NewStudentHandler(studentSvc, enrollSvc, progressSvc)

	r := gin.New()
	r.GET("/courses", courseHandler.List)
	r.POST("/courses", courseHandler.Create)
	r.GET("/courses/name/:name", courseHandler.GetByName)
	r.GET("/courses/courseId/:courseId", courseHandler.GetByCourseID)
	r.PUT("/courses/courseId/:courseId", courseHandler.Update)
	r.DELETE("/courses/courseId/:courseId", courseHandler.Delete)
	r.GET("/instructors", instructorHandler.List)
	r.POST("/instructors", instructorHandler.Create)
	r.GET("/instructors/:id", instructorHandler.Get)
	r.PUT("/instructors/:id", instructorHandler.Update)
	r.DELETE("/instructors/:id", instructorHandler.Delete)
	r.GET("/students", studentHandler.List)
	r.POST("/students", studentHandler.Create)
	r.GET("/students/:id", studentHandler.Get)
	r.PUT("/students/:id", studentHandler.Update)
	r.DELETE("/students/:id", studentHandler.Delete)
	r.POST("/students/:id/enroll", studentHandler.Enroll)
	r.PUT("/students/:id/progress", studentHandler.UpdateProgress)
	env.router = r
	return env
}
