package service

import (
	"errors"
	"math/rand/v2"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/draw"
	"github.com/AdamBeresnev/padel-club/internal/live"
	"github.com/AdamBeresnev/padel-club/internal/metrics"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/jonboulle/clockwork"
)

type options struct {
	clock   clockwork.Clock
	metrics metrics.Metrics
	live    live.Broadcaster
	draw    draw.Options
}

type Option func(*options)

func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

func WithMetrics(m metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithBroadcaster(b live.Broadcaster) Option {
	return func(o *options) { o.live = b }
}

// WithDrawDefaults sets the seeding and group sizes used when a generation
// request leaves them out.
func WithDrawDefaults(d draw.Options) Option {
	return func(o *options) {
		if d.Rand == nil {
			d.Rand = o.draw.Rand
		}
		o.draw = d
	}
}

// WithRand fixes the source used by random seeding.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.draw.Rand = r }
}

func newOptions(opts []Option) options {
	o := options{
		clock:   clockwork.NewRealClock(),
		metrics: metrics.Nop{},
		live:    live.Nop{},
		draw:    draw.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func requireManager(actor *users.User, t *bracket.Tournament) error {
	if actor == nil || !actor.CanManage(t.OwnerID) {
		return bracket.ErrForbidden
	}
	return nil
}

// failureReason is the metric label for an error.
func failureReason(err error) string {
	switch {
	case errors.Is(err, bracket.ErrValidation):
		return "validation"
	case errors.Is(err, bracket.ErrNotFound):
		return "not_found"
	case errors.Is(err, bracket.ErrAlreadyGenerated):
		return "already_generated"
	case errors.Is(err, bracket.ErrInsufficientParticipants):
		return "insufficient_participants"
	case errors.Is(err, bracket.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, bracket.ErrForbidden):
		return "forbidden"
	}
	return "internal"
}
