package cli

import (
	"github.com/spf13/cobra"
)

var tuneAgent string

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Run a tuning pass from the stored run history",
	Long: `Reads the recent window of run metrics per agent type and adjusts stored
timeout and retry parameters. Insufficient history and nominal rates are
normal no-ops. Re-running without new metrics changes nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSuite()
		if err != nil {
			return err
		}
		if tuneAgent != "" {
			return s.engine.Tune(tuneAgent)
		}
		return s.engine.TuneAll()
	},
}

func init() {
	rootCmd.AddCommand(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneAgent, "agent", "", "tune a single agent type (default: all)")
}
