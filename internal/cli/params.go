package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sgrayson/netreach/internal/util"
)

var paramsAgent string

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show effective parameter values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSuite()
		if err != nil {
			return err
		}

		types := []string{paramsAgent}
		if paramsAgent == "" {
			types = make([]string, 0, len(s.schema.Agents))
			for t := range s.schema.Agents {
				types = append(types, t)
			}
			sort.Strings(types)
		}

		out := cmd.OutOrStdout()
		for _, agentType := range types {
			a, ok := s.schema.Agents[agentType]
			if !ok {
				return fmt.Errorf("unknown agent type %q", agentType)
			}
			vals := s.params.Values(agentType)
			fmt.Fprintf(out, "%s:\n", agentType)
			for _, spec := range a.Params {
				fmt.Fprintf(out, "  %-22s %8s  (bounds %s .. %s)\n",
					spec.Name,
					util.FormatValue(spec.Unit, vals[spec.Name]),
					util.FormatValue(spec.Unit, spec.Min),
					util.FormatValue(spec.Unit, spec.Max))
			}
		}
		return nil
	},
}

var paramsGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one parameter value by dotted key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSuite()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.params.Get(args[0], 0))
		return nil
	},
}

var paramsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set one parameter value by dotted key",
	Long: `Writes a parameter value, clamped into its configured bounds, and persists
immediately. The key must be of the form agent_type.parameter and must exist
in the schema.`,
	Example: `  netreach params set outreach_agent.scroll_wait 4000`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSuite()
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("value %q is not numeric: %w", args[1], err)
		}
		if err := s.params.Set(args[0], v); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.params.Get(args[0], 0))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
	paramsCmd.AddCommand(paramsGetCmd, paramsSetCmd)
	paramsCmd.Flags().StringVar(&paramsAgent, "agent", "", "show a single agent type (default: all)")
}
