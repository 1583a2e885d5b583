package handlers

import "github.com/labstack/echo/v4"

// Register mounts the page, state and intent routes. sessionMW resolves the
// visitor's controller for every route that needs one.
func (h *Handler) Register(e *echo.Echo, sessionMW echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health)

	e.GET("/", h.Page, sessionMW)
	e.GET("/api/state", h.State, sessionMW)

	s := e.Group("/session", sessionMW)
	s.POST("/matchup", h.SelectMatchup)
	s.POST("/winner", h.SelectWinner)
	s.POST("/lock", h.SetLock)
	s.POST("/build", h.Build)
	s.POST("/recommendation", h.ToggleRecommendation)
	s.POST("/pick", h.TogglePick)
	s.POST("/remove", h.RemovePick)
	s.POST("/submit", h.Submit)
	s.POST("/reload", h.Reload)
}
