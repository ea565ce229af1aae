package discord

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/resourcepro/internal/notify"
)

type mockSession struct {
	sent  []*discordgo.MessageSend
	chans []string
	errs  []error
	calls int
}

func (m *mockSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	m.chans = append(m.chans, channelID)
	m.sent = append(m.sent, data)
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func rateLimited() error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
}

func newTestAdapter(t *testing.T, sess *mockSession) *Adapter {
	t.Helper()
	a, err := New(AdapterOpts{ChannelID: "998877", Session: sess})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.baseBackoff = time.Millisecond
	return a
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(AdapterOpts{ChannelID: "1"}); err == nil || !strings.Contains(err.Error(), "bot token") {
		t.Errorf("expected bot token error, got %v", err)
	}
	if _, err := New(AdapterOpts{BotToken: "tok"}); err == nil || !strings.Contains(err.Error(), "channel") {
		t.Errorf("expected channel error, got %v", err)
	}
}

func TestSend_BuildsEmbeds(t *testing.T) {
	sess := &mockSession{}
	a := newTestAdapter(t, sess)

	msg := notify.Message{
		Text: "Demand forecast: 2 roles",
		Sections: []notify.Section{{
			Title:  "Demand forecast",
			Body:   "Developer: 40.0h",
			Color:  notify.ColorInfo,
			Fields: []notify.Field{{Name: "Method", Value: "trend", Short: true}},
		}},
	}
	if err := a.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sess.sent) != 1 || sess.chans[0] != "998877" {
		t.Fatalf("sent = %d to %v", len(sess.sent), sess.chans)
	}
	data := sess.sent[0]
	if data.Content != "Demand forecast: 2 roles" {
		t.Errorf("Content = %q", data.Content)
	}
	if len(data.Embeds) != 1 {
		t.Fatalf("Embeds = %d, want 1", len(data.Embeds))
	}
	if data.Embeds[0].Color != 0x2196f3 {
		t.Errorf("Color = %#x, want 0x2196f3", data.Embeds[0].Color)
	}
	if !data.Embeds[0].Fields[0].Inline {
		t.Error("short field should be inline")
	}
}

func TestSend_RetriesRateLimit(t *testing.T) {
	sess := &mockSession{errs: []error{rateLimited(), rateLimited(), nil}}
	a := newTestAdapter(t, sess)

	if err := a.Send(context.Background(), notify.Message{Text: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sess.calls != 3 {
		t.Errorf("calls = %d, want 3", sess.calls)
	}
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	sess := &mockSession{errs: []error{rateLimited(), rateLimited(), rateLimited(), rateLimited()}}
	a := newTestAdapter(t, sess)

	if err := a.Send(context.Background(), notify.Message{Text: "hi"}); err == nil {
		t.Fatal("expected error after retries")
	}
	if sess.calls != maxRetries+1 {
		t.Errorf("calls = %d, want %d", sess.calls, maxRetries+1)
	}
}

func TestSend_OtherErrorNotRetried(t *testing.T) {
	sess := &mockSession{errs: []error{errors.New("missing access")}}
	a := newTestAdapter(t, sess)

	err := a.Send(context.Background(), notify.Message{Text: "hi"})
	if err == nil || !strings.Contains(err.Error(), "missing access") {
		t.Fatalf("err = %v", err)
	}
	if sess.calls != 1 {
		t.Errorf("calls = %d, want 1", sess.calls)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := map[string]int{
		"#36a64f": 0x36a64f,
		"E53935":  0xe53935,
		"":        0,
	}
	for in, want := range tests {
		if got := parseHexColor(in); got != want {
			t.Errorf("parseHexColor(%q) = %#x, want %#x", in, got, want)
		}
	}
}
