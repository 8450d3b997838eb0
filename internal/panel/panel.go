// Package panel holds the subscription panel logic: toggling the
// subscription on and off and flipping per-channel preferences. Every change
// is persisted as the full preference set (read, overlay one field, write),
// which keeps independent toggles from clobbering each other at the cost of
// last-write-wins when two writes race.
package panel

import (
	"context"
	"errors"

	"github.com/mcm-alerts/mcm-alerts/internal/client"
	"github.com/mcm-alerts/mcm-alerts/internal/types"
	"go.uber.org/zap"
)

// Registration is the outcome of asking the push gateway for permission and
// a delivery token.
type Registration struct {
	Granted bool
	Token   string
}

// Registrar requests notification permission from the platform.
type Registrar interface {
	Register(ctx context.Context) (Registration, error)
}

// API is the server surface the panel needs.
type API interface {
	Subscription(ctx context.Context, subType string) (*client.Subscription, error)
	UpsertSubscription(ctx context.Context, sub client.Subscription) (*client.Subscription, error)
	UpdateToken(ctx context.Context, subType, token string) error
}

type Channel string

const (
	ChannelSound   Channel = "sound"
	ChannelBrowser Channel = "browser"
	ChannelEmail   Channel = "email"
)

var (
	// ErrPermissionDenied aborts an enable; nothing is persisted.
	ErrPermissionDenied = errors.New("notification permission denied")
	ErrUnknownChannel   = errors.New("unknown notification channel")
)

type Panel struct {
	api       API
	registrar Registrar
	log       *zap.Logger
	subType   string
}

func New(api API, registrar Registrar, log *zap.Logger) *Panel {
	return &Panel{
		api:       api,
		registrar: registrar,
		log:       log,
		subType:   types.SubscriptionSiteMonitoring,
	}
}

// merged overlays the current known preferences onto the defaults, so a
// first-ever write persists the same defaults the UI renders.
func (p *Panel) merged(current *client.Subscription) client.Subscription {
	sub := client.Subscription{
		Type:          p.subType,
		Enabled:       false,
		EnableSound:   true,
		EnableBrowser: true,
		EnableEmail:   false,
	}

	if current != nil {
		sub.Enabled = current.Enabled
		sub.EnableSound = current.EnableSound
		sub.EnableBrowser = current.EnableBrowser
		sub.EnableEmail = current.EnableEmail
		sub.FCMToken = current.FCMToken
	}

	return sub
}

// SetEnabled turns the subscription on or off. Enabling without a delivery
// token first asks the Registrar; denial aborts with ErrPermissionDenied and
// leaves the stored state untouched.
func (p *Panel) SetEnabled(ctx context.Context, enabled bool) (*client.Subscription, error) {
	current, err := p.api.Subscription(ctx, p.subType)

	if err != nil {
		return nil, err
	}

	sub := p.merged(current)
	registered := false

	if enabled && sub.FCMToken == "" {
		reg, err := p.registrar.Register(ctx)

		if err != nil {
			return nil, err
		}

		if !reg.Granted {
			return nil, ErrPermissionDenied
		}

		sub.FCMToken = reg.Token
		registered = true
	}

	sub.Enabled = enabled

	saved, err := p.api.UpsertSubscription(ctx, sub)

	if err != nil {
		return nil, err
	}

	if registered {
		if err := p.api.UpdateToken(ctx, p.subType, sub.FCMToken); err != nil {
			// The token already rode in on the upsert; refresh failure is
			// not fatal.
			p.log.Warn("token refresh failed", zap.Error(err))
		}
	}

	return saved, nil
}

// SetChannel flips one per-channel preference, persisting the full set.
func (p *Panel) SetChannel(ctx context.Context, channel Channel, value bool) (*client.Subscription, error) {
	current, err := p.api.Subscription(ctx, p.subType)

	if err != nil {
		return nil, err
	}

	sub := p.merged(current)

	switch channel {
	case ChannelSound:
		sub.EnableSound = value
	case ChannelBrowser:
		sub.EnableBrowser = value
	case ChannelEmail:
		sub.EnableEmail = value
	default:
		return nil, ErrUnknownChannel
	}

	return p.api.UpsertSubscription(ctx, sub)
}
