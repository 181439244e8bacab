package delivery

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/pkg/events"
	"github.com/brightpath-edu/retention-service/pkg/nudge"
)

// State is the controller's position in one nudge-check cycle.
type State string

const (
	StateIdle     State = "idle"
	StateChecking State = "checking"
	StateShown    State = "shown"
	StateNone     State = "none"
	StateError    State = "error"
)

// Controller defaults.
const (
	DefaultPollInterval    = 5 * time.Minute
	DefaultSessionCacheTTL = time.Hour
	DefaultCheckTimeout    = 10 * time.Second
	DefaultRetryInitial    = 500 * time.Millisecond
	DefaultRetryMax        = 5 * time.Second
	DefaultMaxAttempts     = 3
)

// ControllerConfig carries the delivery loop tunables. Zero values select
// the defaults.
type ControllerConfig struct {
	// PollInterval is the background check cadence.
	PollInterval time.Duration

	// SessionCacheTTL caps how often mount and externally requested
	// non-forced checks actually hit the server. The background poll is not
	// gated by it. Purely a client-side optimization; the server's 24h rule
	// is authoritative regardless.
	SessionCacheTTL time.Duration

	// CheckTimeout bounds each individual network attempt.
	CheckTimeout time.Duration

	// RetryInitial and RetryMax shape the exponential backoff between
	// attempts; MaxAttempts caps them (first try included).
	RetryInitial time.Duration
	RetryMax     time.Duration
	MaxAttempts  int

	// Navigate is invoked on accept with the in-app destination route.
	Navigate func(route string)

	// Now overrides the clock. Test hook.
	Now func() time.Time
}

func (c *ControllerConfig) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.SessionCacheTTL <= 0 {
		c.SessionCacheTTL = DefaultSessionCacheTTL
	}
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = DefaultCheckTimeout
	}
	if c.RetryInitial <= 0 {
		c.RetryInitial = DefaultRetryInitial
	}
	if c.RetryMax <= 0 {
		c.RetryMax = DefaultRetryMax
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Controller runs the nudge delivery loop for one student session. It owns
// the ephemeral UI state for exactly one in-flight nudge at a time: a new
// nudge is not fetched while one is displayed unless the previous one has
// been resolved or a forced re-check is requested.
//
// At most one network check is in flight; starting a new check cancels the
// previous one, and a superseded check's result is discarded even if it
// resolves later.
type Controller struct {
	studentID string
	client    Client
	board     Board
	bus       *events.Bus
	cfg       ControllerConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu               sync.Mutex
	state            State
	current          *nudge.Message
	lastErr          error
	gen              uint64
	cancelCheck      context.CancelFunc
	lastSessionCheck time.Time
	started          bool
}

// NewController wires a controller. board and bus may be nil; the loop then
// runs without cross-tab sync or domain-event triggers.
func NewController(studentID string, client Client, board Board, bus *events.Bus, cfg ControllerConfig) *Controller {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		studentID: studentID,
		client:    client,
		board:     board,
		bus:       bus,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateIdle,
	}
}

// Start launches the loop: an initial mount check, the background poll, and
// the event/dismissal subscriptions. Idempotent.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run()
}

func (c *Controller) run() {
	defer c.wg.Done()

	var eventCh <-chan events.Event
	if c.bus != nil {
		ch, cancelSub := c.bus.Subscribe(8)
		defer cancelSub()
		eventCh = ch
	}

	var boardCh <-chan string
	if c.board != nil {
		ch, err := c.board.Watch(c.ctx)
		if err != nil {
			logrus.Warnf("dismissal board watch unavailable for student %s: %v", c.studentID, err)
		} else {
			boardCh = ch
		}
	}

	c.Check(false)

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.expireCurrent()
			// Poll ticks skip the session cache so a stale error or none
			// state clears within one poll interval.
			c.check(false, false)
		case e, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			if e.StudentID == "" || e.StudentID == c.studentID {
				logrus.Debugf("domain event %s for student %s, forcing nudge check", e.Type, c.studentID)
				c.Check(true)
			}
		case id, ok := <-boardCh:
			if !ok {
				boardCh = nil
				continue
			}
			c.observeDismissal(id)
		}
	}
}

// Check triggers a nudge check. force bypasses the client-side session
// cache and the displayed-nudge hold; the server's 24h rule still applies.
// A check in flight is superseded: its cancellation fires and its eventual
// result is discarded.
func (c *Controller) Check(force bool) {
	c.check(force, !force)
}

// check runs one trigger of the loop. sessionCached applies the hourly
// session-cache gate; the displayed-nudge hold applies to every non-forced
// trigger.
func (c *Controller) check(force, sessionCached bool) {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}

	now := c.cfg.Now()
	if !force {
		if c.current != nil {
			c.mu.Unlock()
			return
		}
		if sessionCached && !c.lastSessionCheck.IsZero() && now.Sub(c.lastSessionCheck) < c.cfg.SessionCacheTTL {
			c.mu.Unlock()
			return
		}
	}

	c.gen++
	gen := c.gen
	if c.cancelCheck != nil {
		c.cancelCheck()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelCheck = cancel
	c.state = StateChecking
	c.lastErr = nil
	c.lastSessionCheck = now
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.doCheck(ctx, gen, force)
	}()
}

// ForceCheck is Check(true): the development affordance and the
// domain-event path.
func (c *Controller) ForceCheck() {
	c.Check(true)
}

func (c *Controller) doCheck(ctx context.Context, gen uint64, force bool) {
	var msg *nudge.Message

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.CheckTimeout)
		defer cancel()

		m, err := c.client.CheckNudge(attemptCtx, c.studentID, force)
		if err != nil {
			if ctx.Err() != nil {
				// Superseded or torn down: stop retrying immediately.
				return backoff.Permanent(err)
			}
			if IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		msg = m
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.cfg.RetryInitial
	expo.MaxInterval = c.cfg.RetryMax
	expo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(c.cfg.MaxAttempts-1)), ctx)

	err := backoff.Retry(op, policy)
	c.applyResult(ctx, gen, msg, err)
}

// applyResult installs a check outcome, unless the check was superseded in
// the meantime. At most one result is ever applied per generation.
func (c *Controller) applyResult(ctx context.Context, gen uint64, msg *nudge.Message, err error) {
	dismissed := false
	if err == nil && msg != nil && c.board != nil {
		if d, berr := c.board.IsDismissed(ctx, msg.ID); berr == nil {
			dismissed = d
		}
	}

	c.mu.Lock()
	if gen != c.gen || ctx.Err() != nil {
		c.mu.Unlock()
		logrus.Debugf("discarding superseded nudge check result for student %s", c.studentID)
		return
	}

	switch {
	case err != nil:
		c.state = StateError
		c.lastErr = err
		c.mu.Unlock()
		// Failures degrade silently for the student; only the forced-check
		// affordance surfaces this state.
		logrus.Warnf("nudge check failed for student %s: %v", c.studentID, err)
	case msg == nil || dismissed:
		c.state = StateNone
		c.current = nil
		c.mu.Unlock()
	default:
		c.current = msg
		c.state = StateShown
		c.mu.Unlock()
		logrus.Infof("showing nudge %s to student %s (trigger=%s)", msg.ID, c.studentID, msg.Trigger)
		c.postInteraction(Interaction{
			StudentID: c.studentID,
			NudgeID:   msg.ID,
			Action:    nudge.ActionShown,
			Trigger:   msg.Trigger,
			Priority:  msg.Priority,
		})
	}
}

// Dismiss resolves the displayed nudge as dismissed: the local copy clears
// immediately, the dismissal flag goes to the shared board so other
// surfaces drop the same nudge, and the interaction posts best-effort.
func (c *Controller) Dismiss() {
	c.resolve(nudge.ActionDismissed, false)
}

// Accept resolves the displayed nudge as accepted and routes the student to
// the trigger-appropriate destination.
func (c *Controller) Accept() {
	c.resolve(nudge.ActionAccepted, true)
}

func (c *Controller) resolve(action nudge.Action, navigate bool) {
	c.mu.Lock()
	msg := c.current
	if msg == nil {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.state = StateIdle
	c.mu.Unlock()

	if c.board != nil {
		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.CheckTimeout)
		ttl := msg.ExpiresAt.Sub(c.cfg.Now())
		if err := c.board.MarkDismissed(ctx, msg.ID, ttl); err != nil {
			logrus.Warnf("failed to mark nudge %s dismissed on board: %v", msg.ID, err)
		}
		cancel()
	}

	c.postInteraction(Interaction{
		StudentID: c.studentID,
		NudgeID:   msg.ID,
		Action:    action,
		Trigger:   msg.Trigger,
		Priority:  msg.Priority,
	})

	if navigate && c.cfg.Navigate != nil {
		c.cfg.Navigate(RouteFor(msg.Trigger))
	}
}

// observeDismissal clears the local copy when another surface dismissed the
// same nudge id. No server round trip: the acting surface already posted.
func (c *Controller) observeDismissal(nudgeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.ID == nudgeID {
		logrus.Debugf("nudge %s dismissed elsewhere, clearing local copy", nudgeID)
		c.current = nil
		c.state = StateIdle
	}
}

// expireCurrent silently retires a displayed nudge that passed its expiry.
func (c *Controller) expireCurrent() {
	c.mu.Lock()
	msg := c.current
	if msg == nil || !msg.Expired(c.cfg.Now()) {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.state = StateIdle
	c.mu.Unlock()

	c.postInteraction(Interaction{
		StudentID: c.studentID,
		NudgeID:   msg.ID,
		Action:    nudge.ActionExpired,
		Trigger:   msg.Trigger,
		Priority:  msg.Priority,
	})
}

// postInteraction sends an interaction record without blocking the caller.
func (c *Controller) postInteraction(in Interaction) {
	if c.ctx.Err() != nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.CheckTimeout)
		defer cancel()
		if err := c.client.RecordInteraction(ctx, in); err != nil {
			logrus.Debugf("interaction post failed for nudge %s: %v", in.NudgeID, err)
		}
	}()
}

// Current returns the displayed nudge, or nil.
func (c *Controller) Current() *nudge.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// State returns the controller state and the last check error, if any.
func (c *Controller) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.lastErr
}

// Close tears the controller down: every in-flight request is aborted and
// no callback fires afterwards. Blocks until all loop goroutines exit.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

// RouteFor maps a trigger reason to the in-app destination an accepted
// nudge should open.
func RouteFor(trigger nudge.Trigger) string {
	switch trigger {
	case nudge.TriggerGoalCompleted:
		return "/goals/new"
	case nudge.TriggerInactive:
		return "/chat"
	case nudge.TriggerStreakBroken, nudge.TriggerLowTaskCompletion:
		return "/practice"
	default:
		return "/home"
	}
}
