package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	historyAgent string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent run metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSuite()
		if err != nil {
			return err
		}

		types := []string{historyAgent}
		if historyAgent == "" {
			types, err = s.history.AgentTypes()
			if err != nil {
				return err
			}
			sort.Strings(types)
		}

		out := cmd.OutOrStdout()
		for _, agentType := range types {
			runs, err := s.history.Recent(agentType, historyLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintf(out, "%s: no runs recorded\n", agentType)
				continue
			}
			fmt.Fprintf(out, "%s (last %d runs):\n", agentType, len(runs))
			for _, m := range runs {
				parts := make([]string, 0, len(m.Counts))
				for name, v := range m.Counts {
					parts = append(parts, fmt.Sprintf("%s=%d", name, v))
				}
				sort.Strings(parts)
				fmt.Fprintf(out, "  %s  %s  %s\n",
					m.Timestamp.Format("2006-01-02 15:04:05"), m.RunID, strings.Join(parts, " "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyAgent, "agent", "", "show a single agent type (default: all)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of recent runs per agent type")
}
