package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/padraicbc/multibuilder/apiclient"
)

// User-facing notices.
const (
	NoticeNoPicks        = "Please select at least one bet to continue."
	NoticeBuildFailed    = "Error loading recommendations. Please try again."
	NoticeSubmitFailed   = "Error creating bet slip. Please try again."
	NoticeLockFailed     = "Error loading player stats. Please try again."
	NoticeUnknownPlayer  = "That player is not in the winning team's squad."
	NoticeMatchupsFailed = "Error loading matches. Please try again."
)

var (
	ErrNoMatchup             = errors.New("no matchup selected")
	ErrNoWinner              = errors.New("no winner predicted")
	ErrBuildDisabled         = errors.New("build is not enabled")
	ErrBusy                  = errors.New("build already in progress")
	ErrNoPicks               = errors.New("no explicit picks on the slip")
	ErrUnknownPlayer         = errors.New("player not on roster")
	ErrUnknownRecommendation = errors.New("unknown recommendation")
	ErrUnknownBox            = errors.New("unknown market box")
	ErrStale                 = errors.New("stale response discarded")
	ErrUnknownLockCategory   = errors.New("unknown lock category")
)

// IsValidation reports whether err is a precondition failure rather than a
// backend failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrNoMatchup, ErrNoWinner, ErrBuildDisabled, ErrBusy, ErrNoPicks,
		ErrUnknownPlayer, ErrUnknownRecommendation, ErrUnknownBox, ErrStale,
		ErrUnknownLockCategory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Backend is the subset of the API client the controller calls.
type Backend interface {
	Matchups(ctx context.Context) ([]apiclient.Matchup, error)
	RefreshMatchups(ctx context.Context) ([]apiclient.Matchup, error)
	MatchupPlayers(ctx context.Context, matchup string) ([]apiclient.MatchupPlayer, error)
	PlayerStats(ctx context.Context, player string) (*apiclient.PlayerStats, error)
	TeamStats(ctx context.Context, team string) (*apiclient.TeamStats, error)
	Recommendations(ctx context.Context, req apiclient.RecommendationRequest) ([]apiclient.Recommendation, error)
	BuildMulti(ctx context.Context, req apiclient.BuildMultiRequest) (*apiclient.MultiBet, error)
}

// SubmittedSlip is what the slip recorder receives after a successful submit.
type SubmittedSlip struct {
	SessionID string
	MatchID   string
	Matchup   string
	Winner    string
	Multi     apiclient.MultiBet
	Legs      []apiclient.SelectedBet
}

// SlipRecorder keeps a record of submitted slips.
type SlipRecorder interface {
	RecordSlip(ctx context.Context, slip SubmittedSlip) error
}

// Options configures a Controller. RequireLocks gates the build action on
// both lock picks. NewID replaces uuid generation for pick ids.
type Options struct {
	RequireLocks bool
	SessionID    string
	Recorder     SlipRecorder
	Logger       *zap.Logger
	NewID        func() string
}

// Controller is the single owner of one session's State. Every mutation
// happens under mu; backend calls never do.
type Controller struct {
	api  Backend
	opts Options
	log  *zap.Logger

	mu       sync.Mutex
	state    State
	gen      uint64
	lockSeq  map[LockCategory]uint64
	buildSeq uint64
}

// New creates a controller with empty state.
func New(api Backend, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.L()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Controller{
		api:     api,
		opts:    opts,
		log:     log.Named("builder").With(zap.String("session", opts.SessionID)),
		lockSeq: make(map[LockCategory]uint64, 2),
	}
}

// RequireLocks reports whether lock picks gate the build action.
func (c *Controller) RequireLocks() bool { return c.opts.RequireLocks }

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// TakeNotice returns the pending notice and clears it.
func (c *Controller) TakeNotice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.state.Notice
	c.state.Notice = ""
	return n
}

// Notice returns the pending notice and leaves it pending.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Notice
}

// EnsureMatchups loads the matchup list once per session.
func (c *Controller) EnsureMatchups(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.state.MatchupsLoaded || c.state.MatchupsErr
	c.mu.Unlock()
	if loaded {
		return nil
	}
	list, err := c.api.Matchups(ctx)
	return c.replaceMatchups(list, err)
}

// ReloadMatchups fetches the matchup list past any cache and replaces it
// wholesale. The current selection survives unless its matchup disappeared
// or the fetch failed.
func (c *Controller) ReloadMatchups(ctx context.Context) error {
	list, err := c.api.RefreshMatchups(ctx)
	return c.replaceMatchups(list, err)
}

func (c *Controller) replaceMatchups(list []apiclient.Matchup, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Error("load matchups failed", zap.Error(err))
		c.state.Matchups = nil
		c.state.MatchupsErr = true
		if c.state.Matchup != nil {
			c.state.Matchup = nil
			c.state.clearMatchup()
			c.gen++
		}
		return err
	}

	c.state.Matchups = list
	c.state.MatchupsLoaded = true
	c.state.MatchupsErr = false
	if c.state.Matchup != nil {
		if m, ok := findMatchup(list, c.state.Matchup.ID); ok {
			c.state.Matchup = &m
		} else {
			c.state.Matchup = nil
			c.state.clearMatchup()
			c.gen++
		}
	}
	return nil
}

// SelectMatchup sets the current matchup and resets everything below it.
// An empty or unknown id clears the selection.
func (c *Controller) SelectMatchup(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.state.clearMatchup()
	c.state.Matchup = nil
	if m, ok := findMatchup(c.state.Matchups, strings.TrimSpace(id)); ok {
		c.state.Matchup = &m
	}
}

// SelectWinner stores the predicted winner, clears downstream picks and
// loads the winner's roster for the lock controls.
func (c *Controller) SelectWinner(ctx context.Context, side Side) error {
	c.mu.Lock()
	if c.state.Matchup == nil {
		c.mu.Unlock()
		return ErrNoMatchup
	}
	team := c.state.Matchup.Team1
	if side == SideAway {
		team = c.state.Matchup.Team2
	}
	c.state.clearWinner()
	c.state.Winner = team
	c.state.WinnerSide = side
	c.gen++
	gen := c.gen
	label := c.state.Matchup.Label
	c.mu.Unlock()

	players, err := c.api.MatchupPlayers(ctx, label)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug("discarding stale roster", zap.String("team", team))
		return ErrStale
	}
	if err != nil {
		c.log.Error("load roster failed", zap.String("matchup", label), zap.Error(err))
		c.state.RosterErr = true
		return err
	}
	c.state.Roster = rosterFor(players, team)
	return nil
}

// SetLock fills or clears a lock slot. A lock is only stored when the
// player's stats carry a non-zero value for the category's field.
func (c *Controller) SetLock(ctx context.Context, category LockCategory, player string) error {
	if category != LockSix && category != LockWicket {
		return fmt.Errorf("%q: %w", category, ErrUnknownLockCategory)
	}
	player = strings.TrimSpace(player)

	c.mu.Lock()
	if c.state.Winner == "" {
		c.mu.Unlock()
		return ErrNoWinner
	}
	c.lockSeq[category]++
	seq := c.lockSeq[category]
	if player == "" {
		c.setLock(category, nil)
		c.mu.Unlock()
		return nil
	}
	if !contains(c.state.Roster, player) {
		c.state.Notice = NoticeUnknownPlayer
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", player, ErrUnknownPlayer)
	}
	gen := c.gen
	c.mu.Unlock()

	stats, err := c.api.PlayerStats(ctx, player)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || seq != c.lockSeq[category] {
		c.log.Debug("discarding stale player stats", zap.String("player", player))
		return ErrStale
	}
	if err != nil {
		c.log.Error("load player stats failed", zap.String("player", player), zap.Error(err))
		c.state.Notice = NoticeLockFailed
		return err
	}

	m, pct := marketSix, stats.BattingStats.SixHitPct
	if category == LockWicket {
		m, pct = marketWicket, stats.BowlingStats.Wicket1PlusPct
	}
	if !pct.NonZero() {
		c.log.Debug("no lock recorded", zap.String("player", player), zap.String("category", string(category)))
		c.setLock(category, nil)
		return nil
	}
	c.setLock(category, &LockPick{Player: player, Market: m.label, Percentage: pct})
	return nil
}

func (c *Controller) setLock(category LockCategory, lock *LockPick) {
	if category == LockWicket {
		c.state.WicketLock = lock
		return
	}
	c.state.SixLock = lock
}

// BuildRecommendations fetches recommendations and the winner's team stats
// and replaces the recommendation list and market boxes. Selected legs are
// left alone.
func (c *Controller) BuildRecommendations(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.state.BuildEnabled(c.opts.RequireLocks) {
		c.mu.Unlock()
		return ErrBuildDisabled
	}
	c.state.Busy = true
	c.buildSeq++
	seq := c.buildSeq
	gen := c.gen
	winner := c.state.Winner
	req := apiclient.RecommendationRequest{WinnerTeam: winner, MatchID: c.state.Matchup.ID}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.buildSeq == seq {
			c.state.Busy = false
		}
		c.mu.Unlock()
	}()

	recs, team, err := c.fetchBuild(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug("discarding stale recommendations", zap.String("winner", winner))
		return ErrStale
	}
	if err != nil {
		c.log.Error("build recommendations failed", zap.String("winner", winner), zap.Error(err))
		c.state.Notice = NoticeBuildFailed
		return err
	}

	c.state.Recommendations = recs
	c.state.Markets = RankMarkets(team.Players)
	c.state.Built = true
	return nil
}

func (c *Controller) fetchBuild(ctx context.Context, req apiclient.RecommendationRequest) ([]apiclient.Recommendation, *apiclient.TeamStats, error) {
	recs, err := c.api.Recommendations(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	team, err := c.api.TeamStats(ctx, req.WinnerTeam)
	if err != nil {
		return nil, nil, err
	}
	return recs, team, nil
}

// ToggleRecommendation checks or unchecks recommendation index into the
// selected bets.
func (c *Controller) ToggleRecommendation(index int, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.state.Recommendations) {
		return fmt.Errorf("index %d: %w", index, ErrUnknownRecommendation)
	}
	r := c.state.Recommendations[index]
	key := pairKey{r.PlayerName, r.Market}

	if checked {
		if c.state.hasPair(key) {
			return nil
		}
		c.state.SelectedBets = append(c.state.SelectedBets, Pick{
			ID:         c.newPickID(),
			ControlID:  RecommendationControlID(index),
			PlayerName: r.PlayerName,
			Market:     r.Market,
			Percentage: r.Percentage,
		})
	} else {
		c.state.SelectedBets = removeWhere(c.state.SelectedBets, func(p Pick) bool { return p.pair() == key })
	}
	c.state.Summary = nil
	return nil
}

// TogglePick checks or unchecks a market box into the ad-hoc picks. The
// rendered box wins over the caller's player and market when it exists.
func (c *Controller) TogglePick(boxID, player, marketLabel string, pct apiclient.Percent, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Winner == "" {
		return ErrNoWinner
	}
	if !checked {
		c.state.Picks = removeWhere(c.state.Picks, func(p Pick) bool { return p.ControlID == boxID })
		c.state.Summary = nil
		return nil
	}

	if box, ok := c.state.Markets.find(boxID); ok {
		player, marketLabel, pct = box.Player, box.Market, box.Percentage
	} else if strings.TrimSpace(player) == "" || strings.TrimSpace(marketLabel) == "" {
		return fmt.Errorf("%s: %w", boxID, ErrUnknownBox)
	}
	if c.state.BoxChecked(boxID) || c.state.hasPair(pairKey{player, marketLabel}) {
		return nil
	}

	c.state.Picks = append(c.state.Picks, Pick{
		ID:         c.newPickID(),
		ControlID:  boxID,
		PlayerName: player,
		Market:     marketLabel,
		Percentage: pct,
	})
	c.state.Summary = nil
	return nil
}

// RemovePick drops the leg with id from whichever list holds it. Unknown
// ids are ignored.
func (c *Controller) RemovePick(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match := func(p Pick) bool { return p.ID == id }
	c.state.SelectedBets = removeWhere(c.state.SelectedBets, match)
	c.state.Picks = removeWhere(c.state.Picks, match)
	c.state.Summary = nil
}

// SubmitSlip prices the slip. Without explicit picks nothing is sent.
func (c *Controller) SubmitSlip(ctx context.Context) error {
	c.mu.Lock()
	legs := c.state.SlipBets()
	if len(legs) == 0 {
		c.state.Notice = NoticeNoPicks
		c.mu.Unlock()
		return ErrNoPicks
	}
	if c.state.Winner == "" || c.state.Matchup == nil {
		c.mu.Unlock()
		return ErrNoWinner
	}
	gen := c.gen
	winner := c.state.Winner
	matchup := *c.state.Matchup
	c.mu.Unlock()

	bets := make([]apiclient.SelectedBet, len(legs))
	lines := make([]string, len(legs))
	for i, l := range legs {
		bets[i] = apiclient.SelectedBet{ID: l.ID, PlayerName: l.PlayerName, Market: l.Market, Percentage: l.Percentage}
		lines[i] = fmt.Sprintf("%s - %s (%s)", l.PlayerName, l.Market, l.Percentage)
	}

	multi, err := c.api.BuildMulti(ctx, apiclient.BuildMultiRequest{WinnerTeam: winner, SelectedBets: bets})

	c.mu.Lock()
	if err != nil {
		c.log.Error("build multi failed", zap.String("winner", winner), zap.Error(err))
		c.state.Notice = NoticeSubmitFailed
		c.mu.Unlock()
		return err
	}
	if gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("discarding stale multi", zap.String("winner", winner))
		return ErrStale
	}
	c.state.Summary = &Summary{
		Winner:             winner,
		TotalLegs:          multi.TotalLegs,
		CombinedPercentage: multi.CombinedPercentage,
		EstimatedOdds:      multi.EstimatedOdds,
		Lines:              lines,
	}
	c.mu.Unlock()

	c.log.Info("slip submitted",
		zap.String("winner", winner),
		zap.Int("legs", multi.TotalLegs),
		zap.String("odds", multi.EstimatedOdds),
	)
	if c.opts.Recorder != nil {
		slip := SubmittedSlip{
			SessionID: c.opts.SessionID,
			MatchID:   matchup.ID,
			Matchup:   matchup.Label,
			Winner:    winner,
			Multi:     *multi,
			Legs:      bets,
		}
		if err := c.opts.Recorder.RecordSlip(ctx, slip); err != nil {
			c.log.Warn("record slip failed", zap.Error(err))
		}
	}
	return nil
}

func (c *Controller) newPickID() string {
	return "bet-" + c.opts.NewID()
}

func findMatchup(list []apiclient.Matchup, id string) (apiclient.Matchup, bool) {
	if id == "" {
		return apiclient.Matchup{}, false
	}
	for _, m := range list {
		if m.ID == id {
			return m, true
		}
	}
	return apiclient.Matchup{}, false
}

// rosterFor keeps the team's players in response order, once each.
func rosterFor(players []apiclient.MatchupPlayer, team string) []string {
	seen := make(map[string]bool, len(players))
	out := make([]string, 0, len(players))
	for _, p := range players {
		name := strings.TrimSpace(p.PlayerName)
		if strings.TrimSpace(p.TeamName) != team || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeWhere(list []Pick, drop func(Pick) bool) []Pick {
	var out []Pick
	for _, p := range list {
		if !drop(p) {
			out = append(out, p)
		}
	}
	return out
}
