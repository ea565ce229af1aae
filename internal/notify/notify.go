// Package notify posts capacity digests to chat platforms (Slack, Discord).
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zulandar/resourcepro/internal/metrics"
)

// Notifier is implemented by each chat platform adapter.
type Notifier interface {
	// Platform returns a short name such as "slack".
	Platform() string

	// Send delivers a message to the adapter's configured channel.
	Send(ctx context.Context, msg Message) error
}

// Message is a platform-neutral digest.
type Message struct {
	Text     string    // fallback text / top line
	Sections []Section // rendered as attachments or embeds
}

// Section is one block of a digest.
type Section struct {
	Title  string
	Body   string
	Color  string // sidebar color hint, e.g. "#e53935"
	Fields []Field
}

// Field is a key-value pair displayed in a section.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Color constants for digest severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// Broadcast sends msg through every notifier. A failing notifier does not
// stop the others; all failures are returned joined.
func Broadcast(ctx context.Context, notifiers []Notifier, msg Message) error {
	var errs []error
	for _, n := range notifiers {
		if err := n.Send(ctx, msg); err != nil {
			metrics.NotificationsTotal.WithLabelValues(n.Platform(), "error").Inc()
			log.Warn().Err(err).Str("platform", n.Platform()).Msg("notification failed")
			errs = append(errs, fmt.Errorf("notify: %s: %w", n.Platform(), err))
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(n.Platform(), "ok").Inc()
	}
	return errors.Join(errs...)
}
