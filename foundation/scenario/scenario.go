// Package scenario loads scripted sequences of pool operations from YAML
// and replays them against a fresh pool, checking the balances they expect.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Set of operations a step can perform.
const (
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
	OpRewards  = "rewards"
	OpAdvance  = "advance"
	OpExpect   = "expect"
)

// Step is a single operation in a scenario. Values are in ether.
type Step struct {
	Op        string `yaml:"op"`
	Account   string `yaml:"account,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Error     string `yaml:"error,omitempty"`         // Error kind the operation must fail with.
	Days      int    `yaml:"days,omitempty"`          // Time to advance, the pool does not consult it.
	Tolerance uint64 `yaml:"tolerance_wei,omitempty"` // Allowed distance for an expected balance.
}

// String implements the fmt.Stringer interface for error messages.
func (s Step) String() string {
	switch s.Op {
	case OpAdvance:
		return fmt.Sprintf("advance %d days", s.Days)
	case OpRewards:
		return fmt.Sprintf("rewards %s", s.Value)
	}
	return fmt.Sprintf("%s %s %s", s.Op, s.Account, s.Value)
}

// Scenario is a named sequence of steps.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Unsupported bool   `yaml:"unsupported,omitempty"` // Describes behavior the pool doesn't implement.
	Reason      string `yaml:"reason,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Parse decodes a scenario from YAML and checks every step is well formed.
func Parse(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("decoding scenario: %w", err)
	}

	if sc.Name == "" {
		return Scenario{}, errors.New("scenario has no name")
	}

	for i, step := range sc.Steps {
		if err := step.validate(); err != nil {
			return Scenario{}, fmt.Errorf("scenario %s: step %d: %w", sc.Name, i+1, err)
		}
	}

	return sc, nil
}

// Load reads the scenario file at the path.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}

	return Parse(data)
}

// LoadDir reads every .yaml file in the folder ordered by file name.
func LoadDir(dir string) ([]Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scs := make([]Scenario, 0, len(paths))
	for _, path := range paths {
		sc, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scs = append(scs, sc)
	}

	return scs, nil
}

// =============================================================================

func (s Step) validate() error {
	switch s.Op {
	case OpDeposit, OpWithdraw, OpExpect:
		if s.Account == "" {
			return fmt.Errorf("%s requires an account", s.Op)
		}
		if s.Value == "" {
			return fmt.Errorf("%s requires a value", s.Op)
		}

	case OpRewards:
		if s.Value == "" {
			return fmt.Errorf("%s requires a value", s.Op)
		}

	case OpAdvance:
		if s.Days <= 0 {
			return errors.New("advance requires a positive number of days")
		}

	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}

	if s.Error != "" {
		if _, exists := errorKinds[s.Error]; !exists {
			return fmt.Errorf("unknown error kind %q", s.Error)
		}
		if s.Op == OpExpect || s.Op == OpAdvance {
			return fmt.Errorf("%s can't expect an error", s.Op)
		}
	}

	return nil
}
