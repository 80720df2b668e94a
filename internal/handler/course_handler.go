package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edustack/learnhub-api/internal/models"
	"github.com/edustack/learnhub-api/internal/service"
	appErrors "github.com/edustack/learnhub-api/pkg/errors"
	"github.com/edustack/learnhub-api/pkg/response"
)

// CourseHandler exposes course endpoints.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// GetByName godoc
// @Summary Get a course by name
// @Tags Courses
// @Produce json
// @Param name path string true "Course name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/name/{name} [get]
func (h *CourseHandler) GetByName(c *gin.Context) {
	course, err := h.courses.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// GetByCourseID godoc
// @Summary Get a course by business key
// @Tags Courses
// @Produce json
// @Param courseId path string true "Course business key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/courseId/{courseId} [get]
func (h *CourseHandler) GetByCourseID(c *gin.Context) {
	course, err := h.courses.GetByCourseID(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create godoc
// @Summary Create a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update a course by business key
// @Tags Courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course business key"
// @Param payload body models.CourseUpdate true "Fields to merge"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/courseId/{courseId} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var patch models.CourseUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("courseId"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a course by business key
// @Tags Courses
// @Produce json
// @Param courseId path string true "Course business key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/courseId/{courseId} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Course deleted successfully"})
}
