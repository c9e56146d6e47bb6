package api

import (
	"errors"
	"net/http"

	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// UpdateExerciseRequest defines the partial-update JSON for a catalog row.
// Absent fields are left untouched.
type UpdateExerciseRequest struct {
	Name        *string `json:"name,omitempty"`
	Variation   *string `json:"variation,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
}

// --- Handler Methods ---

// GetExercises lists the whole shared catalog.
func (h *ExerciseHandler) GetExercises(c *gin.Context) {
	exercises, err := h.exerciseService.GetExercises(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}
	if exercises == nil {
		c.JSON(http.StatusOK, []domain.Exercise{})
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExerciseByID returns one catalog row.
func (h *ExerciseHandler) GetExerciseByID(c *gin.Context) {
	id, err := parseIDParam(c, "exerciseId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID.")
		return
	}

	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), id)
	if err != nil {
		respondExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise applies a partial update to a catalog row. There is no
// delete endpoint: catalog rows are shared by historical sessions.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, err := parseIDParam(c, "exerciseId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID.")
		return
	}

	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	update := domain.ExerciseUpdate{
		Name:        req.Name,
		Variation:   req.Variation,
		Description: req.Description,
	}
	if req.Type != nil {
		t := domain.ExerciseType(*req.Type)
		update.Type = &t
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), id, update)
	if err != nil {
		respondExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// respondExerciseError maps exercise service errors to HTTP statuses.
func respondExerciseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidExercise):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Exercise operation failed.")
	}
}
