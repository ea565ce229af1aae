package slack

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/resourcepro/internal/notify"
)

type mockSlackClient struct {
	mu     sync.Mutex
	posted []postedMessage
	errs   []error // returned in order, one per call
	calls  int
}

type postedMessage struct {
	channelID string
	options   []slackapi.MsgOption
}

func (m *mockSlackClient) PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return "", "", err
		}
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, options: options})
	return channelID, "1234567890.123456", nil
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(AdapterOpts{ChannelID: "C1"}); err == nil || !strings.Contains(err.Error(), "bot token") {
		t.Errorf("expected bot token error, got %v", err)
	}
	if _, err := New(AdapterOpts{BotToken: "xoxb-1"}); err == nil || !strings.Contains(err.Error(), "channel") {
		t.Errorf("expected channel error, got %v", err)
	}
	a, err := New(AdapterOpts{BotToken: "xoxb-1", ChannelID: "C1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Platform() != "slack" {
		t.Errorf("Platform() = %q", a.Platform())
	}
}

func TestSend_PostsToChannel(t *testing.T) {
	client := &mockSlackClient{}
	a, err := New(AdapterOpts{ChannelID: "C_DIGEST", Client: client})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	msg := notify.Message{
		Text:     "2 over-allocated resources",
		Sections: []notify.Section{{Title: "Over-allocation", Body: "Ada: 150%", Color: notify.ColorError}},
	}
	if err := a.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(client.posted) != 1 {
		t.Fatalf("posted %d messages, want 1", len(client.posted))
	}
	if client.posted[0].channelID != "C_DIGEST" {
		t.Errorf("channel = %q, want C_DIGEST", client.posted[0].channelID)
	}
	if len(client.posted[0].options) != 2 {
		t.Errorf("options = %d, want attachments + text", len(client.posted[0].options))
	}
}

func TestSend_NonRateLimitErrorIsNotRetried(t *testing.T) {
	client := &mockSlackClient{errs: []error{errors.New("channel_not_found")}}
	a, _ := New(AdapterOpts{ChannelID: "C1", Client: client})

	err := a.Send(context.Background(), notify.Message{Text: "hi"})
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected channel_not_found, got %v", err)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}
}

func TestSend_RetriesRateLimit(t *testing.T) {
	client := &mockSlackClient{errs: []error{&slackapi.RateLimitedError{RetryAfter: time.Millisecond}, nil}}
	a, _ := New(AdapterOpts{ChannelID: "C1", Client: client})

	if err := a.Send(context.Background(), notify.Message{Text: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
}

func TestRetryOnRateLimit_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retryOnRateLimit(ctx, func() error {
		return &slackapi.RateLimitedError{RetryAfter: time.Hour}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSectionToAttachment(t *testing.T) {
	att := sectionToAttachment(notify.Section{
		Title:  "Skill gaps",
		Body:   "Python: 3 open tasks",
		Color:  notify.ColorWarning,
		Fields: []notify.Field{{Name: "Method", Value: "trend", Short: true}},
	})
	if att.Title != "Skill gaps" || att.Fallback != "Skill gaps" {
		t.Errorf("title/fallback = %q/%q", att.Title, att.Fallback)
	}
	if att.Color != notify.ColorWarning {
		t.Errorf("Color = %q", att.Color)
	}
	if len(att.Fields) != 1 || !att.Fields[0].Short || att.Fields[0].Value != "trend" {
		t.Errorf("Fields = %+v", att.Fields)
	}
}

func TestBuildMessageOptions_TextOnly(t *testing.T) {
	opts := buildMessageOptions(notify.Message{Text: "plain"})
	if len(opts) != 1 {
		t.Errorf("options = %d, want 1", len(opts))
	}
}
