package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edustack/learnhub-api/internal/models"
	"github.com/edustack/learnhub-api/internal/service"
	appErrors "github.com/edustack/learnhub-api/pkg/errors"
	"github.com/edustack/learnhub-api/pkg/response"
)

// InstructorHandler exposes instructor endpoints.
type InstructorHandler struct {
	instructors *service.InstructorService
}

// NewInstructorHandler constructs InstructorHandler.
func NewInstructorHandler(instructors *service.InstructorService) *InstructorHandler {
	return &InstructorHandler{instructors: instructors}
}

// List godoc
// @Summary List instructors
// @Tags Instructors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) List(c *gin.Context) {
	instructors, err := h.instructors.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors)
}

// Get godoc
// @Summary Get an instructor
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	instructor, err := h.instructors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor)
}

// Create godoc
// @Summary Create an instructor
// @Tags Instructors
// @Accept json
// @Produce json
// @Param payload body service.CreateInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /instructors [post]
func (h *InstructorHandler) Create(c *gin.Context) {
	var req service.CreateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	instructor, err := h.instructors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}

// Update godoc
// @Summary Update an instructor
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Instructor ID"
// @Param payload body models.InstructorUpdate true "Fields to merge"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [put]
func (h *InstructorHandler) Update(c *gin.Context) {
	var patch models.InstructorUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	instructor, err := h.instructors.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor)
}

// Delete godoc
// @Summary Delete an instructor and every course they created
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [delete]
func (h *InstructorHandler) Delete(c *gin.Context) {
	if err := h.instructors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Instructor deleted successfully"})
}
