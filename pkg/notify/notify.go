// Package notify delivers discovery digests to the operator's channels. The
// browser UI used to surface fresh trends directly; the headless engine
// pushes them out instead.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/AhmedHasab/eyelhekaya/pkg/trend"
)

// Digest is one discovery run worth of high-scoring candidates.
type Digest struct {
	Action     string            `json:"action"`
	Day        string            `json:"day"`
	Candidates []trend.Candidate `json:"candidates"`
}

// Notifier delivers digests to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, d *Digest) error
}

// Manager broadcasts digests to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a notification manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a digest to every notifier; per-notifier failures are
// joined, not short-circuited.
func (m *Manager) Broadcast(ctx context.Context, d *Digest) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Send(ctx, d); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
