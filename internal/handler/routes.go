package handler

import (
	"github.com/crewcost/crewcost-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, projectHandler *ProjectHandler, periodHandler *PeriodHandler, budgetHandler *BudgetHandler, changeOrderHandler *ChangeOrderHandler, reportHandler *ReportHandler, documentHandler *DocumentHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/me", authHandler.Me)

	// Project routes
	projects := api.Group("/projects")
	projects.POST("", projectHandler.Create)
	projects.GET("", projectHandler.GetAll)
	projects.GET("/:id", projectHandler.GetByID)
	projects.GET("/:id/budgets", budgetHandler.GetByProject)
	projects.GET("/:id/eco-lines", changeOrderHandler.ListECOLines)
	projects.GET("/:id/budget-report", reportHandler.GetProjectBudget)

	// Accounting period routes
	periods := api.Group("/periods")
	periods.POST("", periodHandler.Create)
	periods.GET("", periodHandler.GetAll)
	periods.GET("/:id", periodHandler.GetByID)
	periods.POST("/:id/close", periodHandler.Close)
	periods.POST("/:id/reopen", periodHandler.Reopen)

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.POST("", budgetHandler.Create)
	budgets.GET("/:id", budgetHandler.GetByID)
	budgets.PUT("/:id", budgetHandler.Update)
	budgets.DELETE("/:id", budgetHandler.Delete)
	budgets.POST("/:id/finalize", budgetHandler.Finalize)
	budgets.GET("/:id/lines", budgetHandler.GetLines)
	budgets.POST("/:id/lines", budgetHandler.AddLine)
	budgets.PUT("/:id/lines/:lineId", budgetHandler.UpdateLine)
	budgets.DELETE("/:id/lines/:lineId", budgetHandler.DeleteLine)
	budgets.GET("/:id/change-orders", changeOrderHandler.GetByBudget)
	budgets.GET("/:id/amounts", reportHandler.GetBudgetAmounts)

	// Internal change order routes
	changeOrders := api.Group("/change-orders")
	changeOrders.POST("", changeOrderHandler.Create)
	changeOrders.GET("/:id", changeOrderHandler.GetByID)
	changeOrders.POST("/:id/documents", documentHandler.Upload)
	changeOrders.GET("/:id/documents", documentHandler.List)

	// External change order line routes
	ecoLines := api.Group("/eco-lines")
	ecoLines.POST("", changeOrderHandler.RecordECOLine)
	ecoLines.POST("/:id/deactivate", changeOrderHandler.DeactivateECOLine)

	// Document routes
	documents := api.Group("/documents")
	documents.GET("/:id", documentHandler.Get)
	documents.DELETE("/:id", documentHandler.Delete)

	// WebSocket endpoint (token passed as query parameter, not header)
	e.GET("/ws", wsHandler.HandleWS)

	// API documentation
	e.GET("/openapi.json", ServeOpenAPI3Spec)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
