package builder

import (
	"context"
	"fmt"

	"github.com/padraicbc/multibuilder/apiclient"
)

// Message is a user intent. The set is closed: only the types below
// implement it.
type Message interface {
	isMessage()
}

// SelectMatchup chooses a matchup; an empty id clears the selection.
type SelectMatchup struct{ MatchupID string }

// SelectWinner predicts the winning side of the current matchup.
type SelectWinner struct{ Side Side }

// SetLock fills a lock slot; an empty player clears it.
type SetLock struct {
	Category LockCategory
	Player   string
}

// BuildRecommendations asks the backend for recommendations and market boxes.
type BuildRecommendations struct{}

// ToggleRecommendation checks or unchecks one recommendation.
type ToggleRecommendation struct {
	Index   int
	Checked bool
}

// TogglePick checks or unchecks one market box.
type TogglePick struct {
	BoxID      string
	PlayerName string
	Market     string
	Percentage apiclient.Percent
	Checked    bool
}

// RemovePick drops a leg from the slip.
type RemovePick struct{ PickID string }

// SubmitSlip prices the slip.
type SubmitSlip struct{}

// ReloadMatchups refetches the matchup list.
type ReloadMatchups struct{}

func (SelectMatchup) isMessage()        {}
func (SelectWinner) isMessage()         {}
func (SetLock) isMessage()              {}
func (BuildRecommendations) isMessage() {}
func (ToggleRecommendation) isMessage() {}
func (TogglePick) isMessage()           {}
func (RemovePick) isMessage()           {}
func (SubmitSlip) isMessage()           {}
func (ReloadMatchups) isMessage()       {}

// Dispatch routes msg to its transition.
func (c *Controller) Dispatch(ctx context.Context, msg Message) error {
	switch m := msg.(type) {
	case SelectMatchup:
		c.SelectMatchup(m.MatchupID)
		return nil
	case SelectWinner:
		return c.SelectWinner(ctx, m.Side)
	case SetLock:
		return c.SetLock(ctx, m.Category, m.Player)
	case BuildRecommendations:
		return c.BuildRecommendations(ctx)
	case ToggleRecommendation:
		return c.ToggleRecommendation(m.Index, m.Checked)
	case TogglePick:
		return c.TogglePick(m.BoxID, m.PlayerName, m.Market, m.Percentage, m.Checked)
	case RemovePick:
		c.RemovePick(m.PickID)
		return nil
	case SubmitSlip:
		return c.SubmitSlip(ctx)
	case ReloadMatchups:
		if err := c.ReloadMatchups(ctx); err != nil {
			c.mu.Lock()
			c.state.Notice = NoticeMatchupsFailed
			c.mu.Unlock()
			return err
		}
		return nil
	}
	return fmt.Errorf("unhandled message %T", msg)
}
