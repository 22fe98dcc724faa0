package model

import "fmt"

// Approximation selects how the probability engine aggregates MCS
// probabilities into the top event probability.
type Approximation int

const (
	ApproxDefault Approximation = iota // truncated Sylvester-Poincare series
	ApproxRareEvent
	ApproxMCUB
)

func (a Approximation) String() string {
	switch a {
	case ApproxRareEvent:
		return "rare-event"
	case ApproxMCUB:
		return "mcub"
	default:
		return "default"
	}
}

// ParseApproximation accepts the CLI/config spellings for an approximation.
func ParseApproximation(s string) (Approximation, error) {
	switch s {
	case "", "default":
		return ApproxDefault, nil
	case "rare-event":
		return ApproxRareEvent, nil
	case "mcub":
		return ApproxMCUB, nil
	default:
		return ApproxDefault, fmt.Errorf("unknown approximation %q", s)
	}
}

// Settings is the immutable-once-analysis-begins configuration value object
// enumerated in the design notes: the set of fields recognized from a config
// file, a CLI invocation, or a caller constructing it directly in Go.
type Settings struct {
	ProbabilityAnalysis  bool          `yaml:"probability_analysis"`
	ImportanceAnalysis   bool          `yaml:"importance_analysis"`
	UncertaintyAnalysis  bool          `yaml:"uncertainty_analysis"`
	CcfAnalysis          bool          `yaml:"ccf_analysis"`
	Approx               Approximation `yaml:"-"`
	ApproxName           string        `yaml:"approx"`
	LimitOrder           int           `yaml:"limit_order"`
	CutOff               float64       `yaml:"cut_off"`
	NumSums              int           `yaml:"num_sums"`
	MissionTime          float64       `yaml:"mission_time"`
	NumTrials            int           `yaml:"num_trials"`
	Seed                 int64         `yaml:"seed"`
}

// DefaultSettings returns a Settings value with the conservative defaults
// used when a caller does not override a field.
func DefaultSettings() Settings {
	return Settings{
		ProbabilityAnalysis: true,
		LimitOrder:          20,
		CutOff:              0,
		NumSums:             1,
		MissionTime:         1,
		NumTrials:           1000,
		Seed:                1,
		Approx:              ApproxDefault,
		ApproxName:          "default",
	}
}

// Normalize resolves ApproxName into Approx (used after YAML unmarshalling,
// where only the string field is populated) and validates every bound.
func (s *Settings) Normalize() error {
	approx, err := ParseApproximation(s.ApproxName)
	if err != nil {
		return err
	}
	s.Approx = approx
	if s.ApproxName == "" {
		s.ApproxName = approx.String()
	}
	return s.Validate()
}

// Validate checks the invariants from §3's Settings description.
func (s Settings) Validate() error {
	if s.LimitOrder < 1 {
		return fmt.Errorf("limit_order must be >= 1, got %d", s.LimitOrder)
	}
	if s.CutOff < 0 || s.CutOff > 1 {
		return fmt.Errorf("cut_off must be in [0,1], got %v", s.CutOff)
	}
	if s.NumSums < 1 {
		return fmt.Errorf("num_sums must be >= 1, got %d", s.NumSums)
	}
	if s.MissionTime <= 0 {
		return fmt.Errorf("mission_time must be > 0, got %v", s.MissionTime)
	}
	if s.NumTrials < 1 {
		return fmt.Errorf("num_trials must be >= 1, got %d", s.NumTrials)
	}
	return nil
}
