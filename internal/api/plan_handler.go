package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ml4teachers/helf/internal/assistant"
	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the plan service dependency.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs for API (Data Transfer Objects) ---

// StepResultResponse is one step of a best-effort batch on the wire.
type StepResultResponse struct {
	Step  string `json:"step"`
	ID    int64  `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// MapBatchToResponse flattens a BatchResult into wire shape, reporting only
// the failed steps: a fully successful batch maps to an empty list.
func MapBatchToResponse(batch service.BatchResult) []StepResultResponse {
	failed := batch.Failed()
	responses := make([]StepResultResponse, len(failed))
	for i, step := range failed {
		responses[i] = StepResultResponse{Step: step.Step, ID: step.ID, Error: step.Err.Error()}
	}
	return responses
}

// PlanResponse is the DTO for returning a plan, optionally with its weeks.
type PlanResponse struct {
	Plan   domain.Plan          `json:"plan"`
	Weeks  []domain.PlanWeek    `json:"weeks,omitempty"`
	Failed []StepResultResponse `json:"failedSteps,omitempty"`
}

// --- Handler Methods ---

// CreatePlan materializes a validated trainingPlan payload for the owner.
// Week creation is best-effort; partial failures come back as 207.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var payload assistant.Plan
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	plan, batch, err := h.planService.CreatePlan(c.Request.Context(), ownerID, &payload)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create plan.")
		return
	}

	status := http.StatusCreated
	if !batch.Ok() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, PlanResponse{Plan: *plan, Failed: MapBatchToResponse(batch)})
}

// CreateWeekSessions attaches the detailed sessions of one week to an
// existing plan.
func (h *PlanHandler) CreateWeekSessions(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID.")
		return
	}

	var payload assistant.WeekPlan
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	batch, err := h.planService.CreateWeekSessions(c.Request.Context(), ownerID, planID, &payload)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	status := http.StatusCreated
	if !batch.Ok() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"failedSteps": MapBatchToResponse(batch)})
}

// GetPlans lists all plans of the owner, newest first.
func (h *PlanHandler) GetPlans(c *gin.Context) {
	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	plans, err := h.planService.GetPlans(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans.")
		return
	}
	if plans == nil {
		c.JSON(http.StatusOK, []domain.Plan{})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan returns one plan with its week rows.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID.")
		return
	}

	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	plan, weeks, err := h.planService.GetPlan(c.Request.Context(), ownerID, planID)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, PlanResponse{Plan: *plan, Weeks: weeks})
}

// DeletePlan tears down the whole hierarchy under a plan. Deletion is
// best-effort: failed steps are reported, not rolled back.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID.")
		return
	}

	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	batch, err := h.planService.DeletePlan(c.Request.Context(), ownerID, planID)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	status := http.StatusOK
	if !batch.Ok() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"failedSteps": MapBatchToResponse(batch)})
}

// respondPlanError maps plan service errors to HTTP statuses.
func respondPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrWeekNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Plan operation failed.")
	}
}

// parseIDParam reads a positive int64 path parameter.
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
