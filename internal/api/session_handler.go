package api

import (
	"errors"
	"net/http"

	"github.com/ml4teachers/helf/internal/assistant"
	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler holds the session service dependency.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- DTOs for API (Data Transfer Objects) ---

// SessionDetailResponse is a session row together with its exercise view.
type SessionDetailResponse struct {
	Session   domain.Session           `json:"session"`
	Exercises []domain.SessionExercise `json:"exercises"`
}

// SaveExercisesRequest carries the full exercise state of a session from the
// client. Pending identities are resolved server-side and echoed back.
type SaveExercisesRequest struct {
	Exercises []domain.SessionExercise `json:"exercises" binding:"required"`
}

// CompleteSessionRequest finalizes a workout with its last exercise state
// and an optional readiness score.
type CompleteSessionRequest struct {
	Exercises      []domain.SessionExercise `json:"exercises" binding:"required"`
	ReadinessScore *int                     `json:"readinessScore,omitempty"`
	Notes          string                   `json:"notes,omitempty"`
}

// OverviewResponse is the dashboard summary.
type OverviewResponse struct {
	ActivePlan     *domain.Plan     `json:"activePlan,omitempty"`
	RecentSessions []domain.Session `json:"recentSessions"`
	NextSession    *domain.Session  `json:"nextSession,omitempty"`
}

// --- Handler Methods ---

// GetSessions lists every session of the owner.
func (h *SessionHandler) GetSessions(c *gin.Context) {
	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	sessions, err := h.sessionService.GetSessions(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve sessions.")
		return
	}
	if sessions == nil {
		c.JSON(http.StatusOK, []domain.Session{})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession returns one session with its full exercise view.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, err := parseIDParam(c, "sessionId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID.")
		return
	}

	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	session, exercises, err := h.sessionService.GetSession(c.Request.Context(), ownerID, sessionID)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	if exercises == nil {
		exercises = []domain.SessionExercise{}
	}
	c.JSON(http.StatusOK, SessionDetailResponse{Session: *session, Exercises: exercises})
}

// CreateSession materializes a standalone sessionPlan payload as an ad-hoc
// session outside any plan.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var payload assistant.SessionPlan
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	session, batch, err := h.sessionService.CreateSession(c.Request.Context(), ownerID, &payload)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create session.")
		return
	}

	status := http.StatusCreated
	if !batch.Ok() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"session": session, "failedSteps": MapBatchToResponse(batch)})
}

// UpdateSession updates the mutable fields of a session row (status, notes,
// readiness score, dates). Ownership and plan links are preserved.
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	sessionID, err := parseIDParam(c, "sessionId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID.")
		return
	}

	var session domain.Session
	if err := c.ShouldBindJSON(&session); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	session.ID = sessionID

	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	if err := h.sessionService.UpdateSession(c.Request.Context(), ownerID, &session); err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SaveExercises upserts the session's entries and sets. The response echoes
// the exercises with pending identities resolved to persisted ids.
func (h *SessionHandler) SaveExercises(c *gin.Context) {
	sessionID, err := parseIDParam(c, "sessionId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID.")
		return
	}

	var req SaveExercisesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	saved, err := h.sessionService.SaveExercises(c.Request.Context(), ownerID, sessionID, req.Exercises)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercises": saved})
}

// CompleteSession finalizes a workout: filled sets are marked completed,
// everything is saved, and the session flips to completed.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	sessionID, err := parseIDParam(c, "sessionId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID.")
		return
	}

	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	session, _, err := h.sessionService.GetSession(c.Request.Context(), ownerID, sessionID)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	if req.ReadinessScore != nil {
		session.ReadinessScore = req.ReadinessScore
	}
	if req.Notes != "" {
		session.Notes = req.Notes
	}

	if err := h.sessionService.SaveCompleted(c.Request.Context(), ownerID, session, req.Exercises); err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// TrainingOverview returns the dashboard summary: active plan, recent
// completed sessions, next planned session.
func (h *SessionHandler) TrainingOverview(c *gin.Context) {
	ownerID, err := getOwnerIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}

	overview, err := h.sessionService.TrainingOverview(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build training overview.")
		return
	}

	recent := overview.RecentSessions
	if recent == nil {
		recent = []domain.Session{}
	}
	c.JSON(http.StatusOK, OverviewResponse{
		ActivePlan:     overview.ActivePlan,
		RecentSessions: recent,
		NextSession:    overview.NextSession,
	})
}

// respondSessionError maps session service errors to HTTP statuses.
func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Session operation failed.")
	}
}
