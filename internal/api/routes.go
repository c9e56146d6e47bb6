package api

import (
	"net/http"

	"github.com/ml4teachers/helf/internal/assistant"
	"github.com/ml4teachers/helf/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	generator assistant.Generator,
	processor *assistant.Processor,
	planService service.PlanService,
	sessionService service.SessionService,
	exerciseService service.ExerciseService,
) {
	assistantHandler := NewAssistantHandler(generator, processor)
	planHandler := NewPlanHandler(planService)
	sessionHandler := NewSessionHandler(sessionService)
	exerciseHandler := NewExerciseHandler(exerciseService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Assistant ---
		protected.POST("/assistant/message", assistantHandler.SendMessage)

		// --- Plan Routes ---
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.GetPlans)
			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.POST("/:planId/weeks", planHandler.CreateWeekSessions)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)
		}

		// --- Session Routes ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.GET("", sessionHandler.GetSessions)
			sessionGroup.POST("", sessionHandler.CreateSession)
			sessionGroup.GET("/:sessionId", sessionHandler.GetSession)
			sessionGroup.PUT("/:sessionId", sessionHandler.UpdateSession)
			sessionGroup.PUT("/:sessionId/exercises", sessionHandler.SaveExercises)
			sessionGroup.POST("/:sessionId/complete", sessionHandler.CompleteSession)
		}

		// --- Dashboard ---
		protected.GET("/overview", sessionHandler.TrainingOverview)

		// --- Exercise Catalog ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.GetExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExerciseByID)
			exerciseGroup.PUT("/:exerciseId", exerciseHandler.UpdateExercise)
			// No DELETE: catalog rows are shared by historical sessions.
		}
	}
}
