// Package export writes run history to CSV for offline review.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/sgrayson/netreach/internal/models"
)

// Source supplies the full run history per agent type.
type Source interface {
	All(agentType string) ([]models.RunMetric, error)
}

// WriteCSV writes one CSV file per agent type into dir. Files are disjoint,
// so agent types are exported concurrently.
func WriteCSV(dir string, agentTypes []string, src Source) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	var g errgroup.Group
	for _, agentType := range agentTypes {
		agentType := agentType
		g.Go(func() error {
			if err := writeAgentCSV(dir, agentType, src); err != nil {
				return fmt.Errorf("exporting %s: %w", agentType, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func writeAgentCSV(dir, agentType string, src Source) error {
	runs, err := src.All(agentType)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return nil
	}

	// Header is the union of counter names across all runs.
	colSet := make(map[string]bool)
	for _, m := range runs {
		for name := range m.Counts {
			colSet[name] = true
		}
	}
	cols := make([]string, 0, len(colSet))
	for name := range colSet {
		cols = append(cols, name)
	}
	sort.Strings(cols)

	path := filepath.Join(dir, agentType+".csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"run_id", "timestamp"}, cols...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, m := range runs {
		row := make([]string, 0, len(header))
		row = append(row, m.RunID, m.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
		for _, name := range cols {
			row = append(row, strconv.Itoa(m.Count(name)))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
