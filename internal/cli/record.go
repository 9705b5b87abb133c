package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sgrayson/netreach/internal/models"
)

var recordNoTune bool

var recordCmd = &cobra.Command{
	Use:   "record [file]",
	Short: "Append a run metric record and tune its agent type",
	Long: `Ingests a RunMetric JSON document from a file (or stdin when the argument
is "-" or omitted), appends it to the run history, then runs a tuning pass
for that agent type. A tuning failure does not discard the recorded metric.`,
	Example: `  # Record from a file emitted by an agent run
  netreach record run_metrics.json

  # Pipe a record in
  echo '{"agent_type":"outreach_agent","counts":{"scroll_success":9,"scroll_failure":1}}' | netreach record`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSuite()
		if err != nil {
			return err
		}

		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening metric file: %w", err)
			}
			defer f.Close()
			r = f
		}

		var m models.RunMetric
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return fmt.Errorf("parsing metric: %w", err)
		}
		if m.AgentType == "" {
			return fmt.Errorf("metric has no agent_type")
		}
		if m.RunID == "" {
			m.RunID = uuid.NewString()
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = time.Now()
		}

		if err := s.history.Record(m); err != nil {
			return err
		}
		s.log.Info("run metric recorded", "agent", m.AgentType, "run_id", m.RunID)

		if recordNoTune {
			return nil
		}
		if err := s.engine.Tune(m.AgentType); err != nil {
			s.log.Warn("tuning pass failed, metric is recorded", "error", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().BoolVar(&recordNoTune, "no-tune", false, "record the metric without running the tuner")
}
