// Package report formats a completed fta.AnalysisRun for a human (WriteText,
// tab-aligned the way the pack's CLI tools print tables) or a machine
// (WriteJSON). Neither function touches stdout directly: callers in
// cmd/faultree decide where the bytes go.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/faultgraph/engine/fta"
)

// WriteText renders run as an aligned plain-text report: MCS table, top
// event probability and importance ranking, and the uncertainty summary,
// whichever of those the run actually computed.
func WriteText(w io.Writer, run *fta.AnalysisRun) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Fault Tree Analysis\trun %s\n", run.ID)
	fmt.Fprintf(tw, "Top event\t%s\n", run.Fta.TopID)
	fmt.Fprintf(tw, "Gates\t%d\n", run.Fta.GateCount)
	fmt.Fprintf(tw, "Basic events\t%d\n", run.Fta.PrimaryCount)
	fmt.Fprintf(tw, "Minimal cut sets\t%d (max order %d)\n", len(run.Fta.MCS), run.Fta.MaxOrder)
	fmt.Fprintln(tw)

	if len(run.Fta.MCS) > 0 {
		fmt.Fprintf(tw, "Order\tLiterals\tProbability\n")
		for _, cs := range run.Fta.MCS {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", len(cs.Literals), literalNames(cs.Literals, run.IndexNames), probString(cs.Probability))
		}
		fmt.Fprintln(tw)
	}

	if run.Prob != nil {
		fmt.Fprintf(tw, "Approximation\t%s\n", run.Prob.Approx)
		fmt.Fprintf(tw, "P(top)\t%v\n", run.Prob.PTotal)
		fmt.Fprintln(tw)
		if len(run.Prob.Importance) > 0 {
			ranked := append([]fta.ImportanceEntry(nil), run.Prob.Importance...)
			sort.Slice(ranked, func(i, j int) bool { return ranked[i].Contribution > ranked[j].Contribution })
			fmt.Fprintf(tw, "Event\tContribution\tFussell-Vesely\n")
			for _, imp := range ranked {
				fmt.Fprintf(tw, "%s\t%v\t%v\n", imp.EventID, imp.Contribution, imp.Relative)
			}
			fmt.Fprintln(tw)
		}
	}

	if run.Uncertainty != nil {
		fmt.Fprintf(tw, "Uncertainty mean\t%v\n", run.Uncertainty.Mean)
		fmt.Fprintf(tw, "Uncertainty sigma\t%v\n", run.Uncertainty.Sigma)
		fmt.Fprintf(tw, "95%% CI\t[%v, %v]\n", run.Uncertainty.CI[0], run.Uncertainty.CI[1])
		fmt.Fprintln(tw)
	}

	if run.Warnings != nil {
		fmt.Fprintf(tw, "Warnings\t%v\n", run.Warnings)
	}

	return tw.Flush()
}

func probString(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%v", *p)
}

func literalNames(literals []int, names map[int]string) string {
	if len(literals) == 0 {
		return "(unity)"
	}
	out := ""
	for i, lit := range literals {
		if i > 0 {
			out += ", "
		}
		sign := ""
		idx := lit
		if idx < 0 {
			sign = "NOT "
			idx = -idx
		}
		name, ok := names[idx]
		if !ok {
			name = fmt.Sprintf("#%d", idx)
		}
		out += sign + name
	}
	return out
}

// jsonMCSEntry mirrors fta.MCSEntry with human-readable literal names, since
// the raw signed indices are meaningless outside this process.
type jsonMCSEntry struct {
	Order       int      `json:"order"`
	Literals    []string `json:"literals"`
	Probability *float64 `json:"probability,omitempty"`
}

type jsonReport struct {
	RunID        string                `json:"run_id"`
	TopEvent     string                `json:"top_event"`
	GateCount    int                   `json:"gate_count"`
	PrimaryCount int                   `json:"primary_count"`
	MaxOrder     int                   `json:"max_order"`
	MCS          []jsonMCSEntry        `json:"minimal_cut_sets"`
	Prob         *fta.ProbResult       `json:"probability,omitempty"`
	Uncertainty  *fta.UncertaintyResult `json:"uncertainty,omitempty"`
	Warning      string                `json:"warning,omitempty"`
}

// WriteJSON renders run as an indented JSON document for machine consumers.
func WriteJSON(w io.Writer, run *fta.AnalysisRun) error {
	out := jsonReport{
		RunID:        run.ID,
		TopEvent:     run.Fta.TopID,
		GateCount:    run.Fta.GateCount,
		PrimaryCount: run.Fta.PrimaryCount,
		MaxOrder:     run.Fta.MaxOrder,
		Prob:         run.Prob,
		Uncertainty:  run.Uncertainty,
	}
	if run.Warnings != nil {
		out.Warning = run.Warnings.Error()
	}
	out.MCS = make([]jsonMCSEntry, len(run.Fta.MCS))
	for i, cs := range run.Fta.MCS {
		names := make([]string, len(cs.Literals))
		for j, lit := range cs.Literals {
			sign, idx := "", lit
			if idx < 0 {
				sign, idx = "!", -idx
			}
			name, ok := run.IndexNames[idx]
			if !ok {
				name = fmt.Sprintf("#%d", idx)
			}
			names[j] = sign + name
		}
		out.MCS[i] = jsonMCSEntry{Order: len(cs.Literals), Literals: names, Probability: cs.Probability}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
