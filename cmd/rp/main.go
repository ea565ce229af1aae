package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/resourcepro/internal/logging"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// nowFunc is the clock every command reads. Tests pin it.
var nowFunc = time.Now

const defaultConfigPath = "resourcepro.yaml"

func newRootCmd() *cobra.Command {
	var (
		logLevel   string
		logConsole bool
	)

	cmd := &cobra.Command{
		Use:   "rp",
		Short: "ResourcePro: utilization tracking and demand forecasting",
		Long: `ResourcePro measures how much of each person's capacity is allocated,
records daily utilization history, and forecasts demand per role and skill.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Options{Level: logLevel, Console: logConsole, Out: cmd.ErrOrStderr()})
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to $LOG_LEVEL or info")
	cmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "human-readable logs instead of JSON")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newUtilizationCmd())
	cmd.AddCommand(newRecordCmd())
	cmd.AddCommand(newForecastCmd())
	cmd.AddCommand(newSkillsCmd())
	cmd.AddCommand(newCostsCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newDaemonCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rp %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
