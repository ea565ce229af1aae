// Package slack implements notify.Notifier for Slack.
package slack

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/resourcepro/internal/notify"
)

// maxRetries is the max number of retries for rate-limited API calls.
const maxRetries = 3

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Adapter posts digests to one Slack channel.
type Adapter struct {
	client    slackClient
	channelID string
}

// AdapterOpts holds parameters for creating a Slack Adapter.
type AdapterOpts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel is required")
	}
	a := &Adapter{client: opts.Client, channelID: opts.ChannelID}
	if a.client == nil {
		a.client = slackapi.New(opts.BotToken)
	}
	return a, nil
}

// Platform implements notify.Notifier.
func (a *Adapter) Platform() string { return "slack" }

// Send posts msg with one attachment per section.
func (a *Adapter) Send(ctx context.Context, msg notify.Message) error {
	options := buildMessageOptions(msg)
	err := retryOnRateLimit(ctx, func() error {
		_, _, postErr := a.client.PostMessage(a.channelID, options...)
		return postErr
	})
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// buildMessageOptions translates a Message into Slack message options.
func buildMessageOptions(msg notify.Message) []slackapi.MsgOption {
	var options []slackapi.MsgOption
	if len(msg.Sections) > 0 {
		var attachments []slackapi.Attachment
		for _, sec := range msg.Sections {
			attachments = append(attachments, sectionToAttachment(sec))
		}
		options = append(options, slackapi.MsgOptionAttachments(attachments...))
	}
	if msg.Text != "" || len(msg.Sections) == 0 {
		options = append(options, slackapi.MsgOptionText(msg.Text, false))
	}
	return options
}

func sectionToAttachment(sec notify.Section) slackapi.Attachment {
	att := slackapi.Attachment{
		Title:    sec.Title,
		Text:     sec.Body,
		Color:    sec.Color,
		Fallback: sec.Title,
	}
	for _, f := range sec.Fields {
		att.Fields = append(att.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: f.Short,
		})
	}
	return att
}

// retryOnRateLimit retries fn while Slack reports rate limiting, honouring
// the Retry-After hint when present.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var rle *slackapi.RateLimitedError
		if !errors.As(err, &rle) {
			return err
		}
		if attempt == maxRetries {
			return err
		}

		wait := rle.RetryAfter
		if wait <= 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil
}
