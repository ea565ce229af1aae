package main

import (
	"github.com/spf13/cobra"
	"github.com/zulandar/resourcepro/internal/daemon"
)

func newDaemonCmd() *cobra.Command {
	var (
		configPath string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the daily jobs on the configured schedule",
		Long: `Runs utilization recording, skill analysis, forecasting and cost snapshots on
the schedule.daily cron expression, then posts digests to the configured
Slack and Discord channels. A failed job is logged and the schedule continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, configPath, once)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to ResourcePro config file")
	cmd.Flags().BoolVar(&once, "once", false, "run the jobs once and exit")
	return cmd
}

func runDaemon(cmd *cobra.Command, configPath string, once bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	enhancer, err := newEnhancer(ctx, cfg)
	if err != nil {
		return err
	}
	notifiers, err := newNotifiers(cfg)
	if err != nil {
		return err
	}

	d, err := daemon.New(daemon.Opts{
		DB:           gormDB,
		Schedule:     cfg.Schedule.Daily,
		BackfillDays: cfg.Schedule.BackfillDays,
		DaysAhead:    cfg.Forecast.DaysAhead,
		Enhancer:     enhancer,
		Benchmarks:   cfg.Forecast.Benchmarks,
		Notifiers:    notifiers,
		Threshold:    cfg.Notify.OverallocationThreshold,
		Out:          cmd.OutOrStdout(),
		Now:          nowFunc,
	})
	if err != nil {
		return err
	}
	if once {
		return d.RunOnce(ctx)
	}
	return d.Run(ctx)
}
