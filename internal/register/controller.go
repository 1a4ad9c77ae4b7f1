// Package register runs a single registration form submission: password
// checks, then account creation followed by two best-effort follow-ups.
package register

import (
	"context"
	"sync"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/provider"
	"github.com/Goofygiraffe06/signup/internal/utils"
)

const (
	// MsgCreated is the status text after a successful registration.
	MsgCreated = "User has been created successfully"
	// MsgCheckInbox is the notification sent once the verification email went out.
	MsgCheckInbox = "Please verify your email address. Check your inbox."
)

// Input is one form submission.
type Input struct {
	Name     string
	Email    string
	Password string
}

// Notifier shows a one-off message to the user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) { f(ctx, message) }

// Observer receives every phase change together with the status at that point.
type Observer func(phase Phase, status Status)

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets where the "check your inbox" prompt goes.
func WithNotifier(n Notifier) Option { return func(c *Controller) { c.notifier = n } }

// WithObserver registers a status observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// Controller owns the status record of a registration form.
type Controller struct {
	provider  provider.Provider
	notifier  Notifier
	observers []Observer

	mu     sync.Mutex
	phase  Phase
	status Status
	input  Input
}

// NewController builds a controller backed by p.
func NewController(p provider.Provider, opts ...Option) *Controller {
	c := &Controller{provider: p}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current status record.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Input returns what the form should currently display. It is cleared after
// a successful registration.
func (c *Controller) Input() Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Submit runs one submission to completion and returns the settled status.
// ctx is handed to the provider; callers that must not abandon a started
// registration should pass a context without cancellation.
func (c *Controller) Submit(ctx context.Context, in Input) Status {
	start := time.Now()
	emailHash := utils.HashEmail(in.Email)

	c.mu.Lock()
	c.input = in
	c.mu.Unlock()

	c.transition(PhaseValidating, Status{})

	if err := ValidatePassword(in.Password); err != nil {
		logging.DebugLog("Registration rejected [%s]: %v", emailHash, err)
		return c.transition(PhaseRejected, Status{Error: err.Error()})
	}

	c.transition(PhaseCreating, Status{})
	id, err := c.provider.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		logging.WarnLog("Registration failed: account creation [%s]: %v", emailHash, err)
		return c.transition(PhaseFailed, Status{Error: provider.Message(err)})
	}
	c.transition(PhaseCreated, Status{})

	c.transition(PhaseVerifying, Status{})
	c.sendVerification(ctx, id)

	c.transition(PhaseNaming, Status{})
	c.setDisplayName(ctx, id, in.Name)

	c.mu.Lock()
	c.input = Input{}
	c.mu.Unlock()

	logging.InfoLog("Registration completed [%s] %v", emailHash, time.Since(start))
	return c.transition(PhaseDone, Status{Success: MsgCreated})
}

// Follow-up failures are logged only; the account already exists.
func (c *Controller) sendVerification(ctx context.Context, id provider.Identity) {
	if err := c.provider.SendVerification(ctx, id); err != nil {
		logging.ErrorLog("Verification email failed [%s]: %v", utils.HashEmail(id.Email), err)
		return
	}
	if c.notifier != nil {
		c.notifier.Notify(ctx, MsgCheckInbox)
	}
}

func (c *Controller) setDisplayName(ctx context.Context, id provider.Identity, name string) {
	if err := c.provider.SetDisplayName(ctx, id, name); err != nil {
		logging.ErrorLog("Display name update failed [%s]: %v", utils.HashEmail(id.Email), err)
		return
	}
	logging.InfoLog("User name updated [%s]", utils.HashEmail(id.Email))
}

// transition replaces the status wholesale and notifies observers.
func (c *Controller) transition(phase Phase, st Status) Status {
	c.mu.Lock()
	c.phase = phase
	c.status = st
	observers := c.observers
	c.mu.Unlock()

	for _, o := range observers {
		o(phase, st)
	}
	return st
}
