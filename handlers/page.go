package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/multibuilder/builder"
	mw "github.com/padraicbc/multibuilder/middleware"
	"github.com/padraicbc/multibuilder/view"
)

// Page renders the multi builder for the visitor's session.
func (h *Handler) Page(c echo.Context) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.PageTemplate, h.page(c.Request().Context(), ctrl, true))
}

// State returns the same projection the page renders, as JSON. The pending
// notice is shown but left for the next page render.
func (h *Handler) State(c echo.Context) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.page(c.Request().Context(), ctrl, false))
}

// Health reports liveness and the number of live sessions.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

// page loads the matchup list on first use and projects the session state.
// consume clears the pending notice once it is projected.
func (h *Handler) page(ctx context.Context, ctrl *builder.Controller, consume bool) view.Page {
	if err := ctrl.EnsureMatchups(ctx); err != nil {
		h.log.Warn("matchups unavailable", zap.Error(err))
	}
	notice := ctrl.Notice()
	if consume {
		notice = ctrl.TakeNotice()
	}
	return view.Build(ctrl.Snapshot(), view.Options{
		RequireLocks: ctrl.RequireLocks(),
		Notice:       notice,
	})
}

func controller(c echo.Context) (*builder.Controller, error) {
	ctrl, ok := mw.Controller(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session not initialised")
	}
	return ctrl, nil
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
