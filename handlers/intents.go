package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/multibuilder/apiclient"
	"github.com/padraicbc/multibuilder/builder"
)

type matchupRequest struct {
	MatchupID string `json:"matchup_id" form:"matchup_id"`
}

type winnerRequest struct {
	Side string `json:"side" form:"side"`
}

type lockRequest struct {
	Category string `json:"category" form:"category"`
	Player   string `json:"player" form:"player"`
}

type recommendationRequest struct {
	Index   json.Number `json:"index" form:"index"`
	Checked bool        `json:"checked" form:"checked"`
}

type pickRequest struct {
	BoxID      string `json:"box_id" form:"box_id"`
	PlayerName string `json:"player_name" form:"player_name"`
	Market     string `json:"market" form:"market"`
	Percentage string `json:"percentage" form:"percentage"`
	Checked    bool   `json:"checked" form:"checked"`
}

type removeRequest struct {
	PickID string `json:"pick_id" form:"pick_id"`
}

// SelectMatchup chooses the session's matchup.
func (h *Handler) SelectMatchup(c echo.Context) error {
	var req matchupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.dispatch(c, builder.SelectMatchup{MatchupID: strings.TrimSpace(req.MatchupID)})
}

// SelectWinner predicts the winning side.
func (h *Handler) SelectWinner(c echo.Context) error {
	var req winnerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	side, err := builder.ParseSide(req.Side)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.dispatch(c, builder.SelectWinner{Side: side})
}

// SetLock fills or clears a lock slot.
func (h *Handler) SetLock(c echo.Context) error {
	var req lockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	category, err := builder.ParseLockCategory(req.Category)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.dispatch(c, builder.SetLock{Category: category, Player: req.Player})
}

// Build fetches recommendations and market boxes.
func (h *Handler) Build(c echo.Context) error {
	return h.dispatch(c, builder.BuildRecommendations{})
}

// ToggleRecommendation checks or unchecks a recommendation.
func (h *Handler) ToggleRecommendation(c echo.Context) error {
	var req recommendationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	index, err := strconv.Atoi(strings.TrimSpace(req.Index.String()))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "index must be an integer")
	}
	return h.dispatch(c, builder.ToggleRecommendation{Index: index, Checked: req.Checked})
}

// TogglePick checks or unchecks a market box.
func (h *Handler) TogglePick(c echo.Context) error {
	var req pickRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.BoxID = strings.TrimSpace(req.BoxID)
	if req.BoxID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "box_id is required")
	}
	return h.dispatch(c, builder.TogglePick{
		BoxID:      req.BoxID,
		PlayerName: strings.TrimSpace(req.PlayerName),
		Market:     strings.TrimSpace(req.Market),
		Percentage: apiclient.Percent(strings.TrimSpace(req.Percentage)),
		Checked:    req.Checked,
	})
}

// RemovePick drops a leg from the slip.
func (h *Handler) RemovePick(c echo.Context) error {
	var req removeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.dispatch(c, builder.RemovePick{PickID: strings.TrimSpace(req.PickID)})
}

// Submit prices the slip.
func (h *Handler) Submit(c echo.Context) error {
	return h.dispatch(c, builder.SubmitSlip{})
}

// Reload refetches the matchup list.
func (h *Handler) Reload(c echo.Context) error {
	return h.dispatch(c, builder.ReloadMatchups{})
}

// dispatch sends msg to the session controller, then redirects browsers back
// to the page and answers JSON clients with the new projection. Backend
// failures reach JSON clients as 502 alongside the notice.
func (h *Handler) dispatch(c echo.Context, msg builder.Message) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, reload := msg.(builder.ReloadMatchups); !reload {
		if err := ctrl.EnsureMatchups(ctx); err != nil {
			h.log.Warn("matchups unavailable", zap.Error(err))
		}
	}

	status := http.StatusOK
	intent := fmt.Sprintf("%T", msg)
	if err := ctrl.Dispatch(ctx, msg); err != nil {
		if builder.IsValidation(err) {
			h.log.Debug("intent not applied", zap.String("intent", intent), zap.Error(err))
		} else {
			status = http.StatusBadGateway
			h.log.Warn("intent failed", zap.String("intent", intent), zap.Error(err))
		}
	}

	if !wantsJSON(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.JSON(status, h.page(ctx, ctrl, true))
}
