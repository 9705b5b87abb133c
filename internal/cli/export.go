package cli

import (
	"github.com/spf13/cobra"

	"github.com/sgrayson/netreach/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to CSV, one file per agent type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSuite()
		if err != nil {
			return err
		}
		types, err := s.history.AgentTypes()
		if err != nil {
			return err
		}
		if err := export.WriteCSV(exportOut, types, s.history); err != nil {
			return err
		}
		s.log.Info("history exported", "dir", exportOut, "agent_types", len(types))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "export", "output directory for CSV files")
}
