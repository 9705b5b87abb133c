package params

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/sgrayson/netreach/internal/models"
)

//go:embed schema.toml
var defaultSchemaTOML string

// DefaultSchema returns the compiled-in parameter schema.
func DefaultSchema() models.Schema {
	s, err := parseSchema(defaultSchemaTOML)
	if err != nil {
		// The embedded schema is validated by tests; failing here means the
		// binary itself is broken.
		panic(fmt.Sprintf("embedded schema invalid: %v", err))
	}
	return s
}

// LoadSchema reads a schema override file. A file that fails to parse or
// validate yields a ConfigCorruptError.
func LoadSchema(path string) (models.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Schema{}, &models.StorageError{Op: "read", Path: path, Err: err}
	}
	s, err := parseSchema(string(data))
	if err != nil {
		return models.Schema{}, &models.ConfigCorruptError{Path: path, Err: err}
	}
	return s, nil
}

func parseSchema(data string) (models.Schema, error) {
	var s models.Schema
	if _, err := toml.Decode(data, &s); err != nil {
		return s, fmt.Errorf("parsing schema: %w", err)
	}
	if err := validateSchema(s); err != nil {
		return s, err
	}
	return s, nil
}

func validateSchema(s models.Schema) error {
	if len(s.Agents) == 0 {
		return fmt.Errorf("schema defines no agent types")
	}

	owner := make(map[string]string) // param name -> agent type
	for _, agentType := range sortedAgentTypes(s) {
		a := s.Agents[agentType]
		seen := make(map[string]bool)
		for _, p := range a.Params {
			if p.Name == "" {
				return fmt.Errorf("%s: parameter with empty name", agentType)
			}
			if seen[p.Name] {
				return fmt.Errorf("%s: duplicate parameter %q", agentType, p.Name)
			}
			seen[p.Name] = true
			if prev, ok := owner[p.Name]; ok {
				return fmt.Errorf("parameter %q owned by both %s and %s", p.Name, prev, agentType)
			}
			owner[p.Name] = agentType

			switch p.Unit {
			case models.UnitMillis, models.UnitSeconds, models.UnitCount:
			default:
				return fmt.Errorf("%s.%s: unknown unit %q", agentType, p.Name, p.Unit)
			}
			if p.Min > p.Max {
				return fmt.Errorf("%s.%s: min %v above max %v", agentType, p.Name, p.Min, p.Max)
			}
			if p.Default < p.Min || p.Default > p.Max {
				return fmt.Errorf("%s.%s: default %v outside [%v, %v]", agentType, p.Name, p.Default, p.Min, p.Max)
			}
			if p.StepUpPct == 0 && p.StepUpAbs == 0 {
				return fmt.Errorf("%s.%s: no step-up configured", agentType, p.Name)
			}
			if p.StepDownPct == 0 && p.StepDownAbs == 0 {
				return fmt.Errorf("%s.%s: no step-down configured", agentType, p.Name)
			}
		}

		ruleParams := make(map[string]bool)
		for _, r := range a.Rules {
			if r.Signal == "" || r.Success == "" || r.Failure == "" {
				return fmt.Errorf("%s: rule %q missing signal or counter names", agentType, r.Signal)
			}
			if _, ok := a.Spec(r.Param); !ok {
				return fmt.Errorf("%s: rule %q adjusts unknown parameter %q", agentType, r.Signal, r.Param)
			}
			if ruleParams[r.Param] {
				return fmt.Errorf("%s: parameter %q adjusted by more than one rule", agentType, r.Param)
			}
			ruleParams[r.Param] = true
		}
	}
	return nil
}

func sortedAgentTypes(s models.Schema) []string {
	types := make([]string, 0, len(s.Agents))
	for t := range s.Agents {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
