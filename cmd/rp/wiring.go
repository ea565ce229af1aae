package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zulandar/resourcepro/internal/config"
	"github.com/zulandar/resourcepro/internal/forecast"
	"github.com/zulandar/resourcepro/internal/forecast/gemini"
	"github.com/zulandar/resourcepro/internal/notify"
	"github.com/zulandar/resourcepro/internal/notify/discord"
	"github.com/zulandar/resourcepro/internal/notify/slack"
)

// newEnhancer returns the Gemini enhancer when enhancement is enabled and a
// key is configured, and nil otherwise.
func newEnhancer(ctx context.Context, cfg *config.Config) (forecast.Enhancer, error) {
	if !cfg.Forecast.Enhance {
		return nil, nil
	}
	if cfg.Forecast.GeminiKey == "" {
		log.Warn().Str("env", config.EnvGeminiAPIKey).Msg("forecast enhancement enabled but no API key set, skipping")
		return nil, nil
	}
	e, err := gemini.New(ctx, gemini.Opts{APIKey: cfg.Forecast.GeminiKey, Model: cfg.Forecast.GeminiModel})
	if err != nil {
		return nil, fmt.Errorf("create enhancer: %w", err)
	}
	return e, nil
}

// newNotifiers builds an adapter for every enabled chat channel.
func newNotifiers(cfg *config.Config) ([]notify.Notifier, error) {
	var out []notify.Notifier
	if cfg.Notify.Slack.Enabled() {
		a, err := slack.New(slack.AdapterOpts{BotToken: cfg.Notify.Slack.Token, ChannelID: cfg.Notify.Slack.Channel})
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if cfg.Notify.Discord.Enabled() {
		a, err := discord.New(discord.AdapterOpts{BotToken: cfg.Notify.Discord.Token, ChannelID: cfg.Notify.Discord.Channel})
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
