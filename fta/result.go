package fta

import (
	"time"

	"github.com/faultgraph/engine/uncertainty"
)

// FtaResult collects the minimal cut set generation output, per §6.
type FtaResult struct {
	TopID        string
	PrimaryCount int
	GateCount    int
	LimitOrder   int
	MaxOrder     int
	MCS          []MCSEntry
	Timings      map[string]time.Duration
}

// MCSEntry is one minimal cut set: its signed basic-event literal indices,
// and its per-set probability when probability analysis ran.
type MCSEntry struct {
	Literals    []int
	Probability *float64
}

// ProbResult collects the probability engine output, per §6.
type ProbResult struct {
	Approx     string
	NumSums    int
	CutOff     float64
	NumProbMCS int
	PTotal     float64
	Importance []ImportanceEntry
}

// ImportanceEntry is one basic event's Fussell-Vesely contribution.
type ImportanceEntry struct {
	EventID      string
	Contribution float64
	Relative     float64
}

// UncertaintyResult collects the uncertainty engine output, per §6.
type UncertaintyResult struct {
	Mean         float64
	Sigma        float64
	CI           [2]float64
	Distribution []uncertainty.HistogramBin
	Quantiles    []float64
	AnalysisTime time.Duration
}
