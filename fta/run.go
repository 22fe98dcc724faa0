// Package fta orchestrates one fault tree analysis end to end: CCF
// expansion, indexed graph construction, preprocessing, minimal cut set
// generation, and the probability/uncertainty engines, per §2's strictly
// sequential pipeline. Unlike the six core packages it wires together, fta
// carries the ambient stack -- structured logging, a run identifier,
// accumulated warnings -- the way the rest of the pack expects of
// service-shaped Go code, even though the pipeline itself is a pure
// function of its inputs.
package fta

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/faultgraph/engine/indexed"
	"github.com/faultgraph/engine/mcs"
	"github.com/faultgraph/engine/model"
	"github.com/faultgraph/engine/preprocess"
	"github.com/faultgraph/engine/probability"
	"github.com/faultgraph/engine/uncertainty"
)

// AnalysisRun is the ambient wrapper around one Run invocation's outputs: a
// run identifier, accumulated §7 warnings, and the three result structs §6
// names, any of which is nil when its toggle in settings was off.
type AnalysisRun struct {
	ID       string
	Settings model.Settings
	Warnings error

	// IndexNames maps an absolute basic-event index back to its
	// original-cased display id, for callers (package report) translating
	// MCSEntry.Literals back into readable output.
	IndexNames map[int]string

	Fta         *FtaResult
	Prob        *ProbResult
	Uncertainty *UncertaintyResult
}

func (r *AnalysisRun) addWarning(msg string) {
	r.Warnings = multierr.Append(r.Warnings, errors.New(msg))
}

func normalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Run executes the full pipeline over input under settings. ctx is checked
// between stages; within a stage only the uncertainty engine consults it,
// before each chunk of trials, never mid-trial, per §5.
func Run(ctx context.Context, input Input, settings model.Settings, logger *zap.Logger) (*AnalysisRun, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := settings.Validate(); err != nil {
		return nil, Wrap(KindValidation, "settings", err)
	}

	runID := uuid.NewString()
	log := logger.With(zap.String("run_id", runID))

	run := &AnalysisRun{ID: runID, Settings: settings}

	basicEvents, ccfReplacement, err := expandCCF(input, settings, log)
	if err != nil {
		return nil, err
	}

	nameToIndex, indexToBE, indexNames := assignIndices(basicEvents)
	run.IndexNames = indexNames

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis canceled before indexing: %w", err)
	}

	buildStart := time.Now()
	builder := &indexed.Builder{
		Gates:           input.Gates,
		BasicEventIndex: nameToIndex,
		HouseEvents:     input.HouseEvents,
		CcfReplacement:  ccfReplacement,
	}
	tree, err := builder.Build(input.TopGate)
	if err != nil {
		return nil, Wrap(KindValidation, "indexed graph builder", err)
	}
	buildElapsed := time.Since(buildStart)
	log.Info("indexed graph built", zap.Duration("elapsed", buildElapsed), zap.Int("gates", len(tree.Gates())), zap.Int("basic_events", len(tree.BasicEvents())))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis canceled before preprocessing: %w", err)
	}

	preStart := time.Now()
	preprocess.Run(tree)
	preElapsed := time.Since(preStart)
	log.Info("preprocessing complete", zap.Duration("elapsed", preElapsed))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis canceled before mcs generation: %w", err)
	}

	mcsStart := time.Now()
	sets := mcs.Generate(tree, settings.LimitOrder)
	mcsElapsed := time.Since(mcsStart)
	log.Info("minimal cut sets generated", zap.Duration("elapsed", mcsElapsed), zap.Int("count", len(sets)), zap.Int("max_order", mcs.MaxOrder(sets)))

	pointProb := func(idx int) float64 {
		be, ok := indexToBE[idx]
		if !ok {
			return 0
		}
		return be.Probability()
	}
	distOf := func(idx int) *model.Distribution {
		be, ok := indexToBE[idx]
		if !ok || be.IsConstant() {
			return nil
		}
		return be.Distribution
	}

	var probEntries []probability.Entry
	if settings.ProbabilityAnalysis || settings.ImportanceAnalysis {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis canceled before probability analysis: %w", err)
		}
		probStart := time.Now()
		res := probability.Compute(sets, settings, pointProb)
		probElapsed := time.Since(probStart)
		probEntries = res.Entries

		if res.RareEventOverflow {
			msg := fmt.Sprintf("rare-event approximation exceeded 1: p_total=%v", res.PTotal)
			run.addWarning(msg)
			log.Warn(msg, zap.Float64("p_total", res.PTotal))
		}

		importance := make([]ImportanceEntry, 0, len(res.Importance))
		for _, imp := range res.Importance {
			importance = append(importance, ImportanceEntry{
				EventID:      indexNames[imp.EventIndex],
				Contribution: imp.Contribution,
				Relative:     imp.Relative,
			})
		}
		run.Prob = &ProbResult{
			Approx:     settings.Approx.String(),
			NumSums:    settings.NumSums,
			CutOff:     settings.CutOff,
			NumProbMCS: res.NumProbMCS,
			PTotal:     res.PTotal,
			Importance: importance,
		}
		log.Info("probability analysis complete", zap.Duration("elapsed", probElapsed), zap.Float64("p_total", res.PTotal))
	}

	mcsEntries := make([]MCSEntry, len(sets))
	for i, cs := range sets {
		entry := MCSEntry{Literals: append([]int(nil), cs...)}
		if probEntries != nil {
			p := probEntries[i].Probability
			entry.Probability = &p
		}
		mcsEntries[i] = entry
	}

	run.Fta = &FtaResult{
		TopID:        input.TopGate,
		PrimaryCount: len(tree.BasicEvents()),
		GateCount:    len(tree.Gates()),
		LimitOrder:   settings.LimitOrder,
		MaxOrder:     mcs.MaxOrder(sets),
		MCS:          mcsEntries,
		Timings: map[string]time.Duration{
			"build":      buildElapsed,
			"preprocess": preElapsed,
			"mcs":        mcsElapsed,
		},
	}

	if settings.UncertaintyAnalysis {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis canceled before uncertainty analysis: %w", err)
		}
		uncStart := time.Now()
		ures, err := uncertainty.Engine{}.Sample(ctx, sets, settings, pointProb, distOf)
		if err != nil {
			return nil, Wrap(KindLogic, "uncertainty sampling", err)
		}
		uncElapsed := time.Since(uncStart)
		for _, w := range ures.Warnings {
			run.addWarning(w)
			log.Warn(w)
		}
		run.Uncertainty = &UncertaintyResult{
			Mean:         ures.Mean,
			Sigma:        ures.Sigma,
			CI:           ures.CI,
			Distribution: ures.Distribution,
			Quantiles:    ures.Quantiles,
			AnalysisTime: uncElapsed,
		}
		log.Info("uncertainty analysis complete", zap.Duration("elapsed", uncElapsed), zap.Float64("mean", ures.Mean), zap.Float64("sigma", ures.Sigma))
	}

	return run, nil
}

// expandCCF synthesizes, for every CCF group when settings.CcfAnalysis is
// set, the independent and combination-level basic events and per-member
// replacement formulas described by §4.6, folding them into a copy of
// input.BasicEvents and a member->replacement map the builder consumes.
func expandCCF(input Input, settings model.Settings, log *zap.Logger) (map[string]*model.BasicEvent, map[string]*model.Formula, error) {
	basicEvents := make(map[string]*model.BasicEvent, len(input.BasicEvents))
	for k, v := range input.BasicEvents {
		basicEvents[k] = v
	}
	ccfReplacement := make(map[string]*model.Formula)
	if !settings.CcfAnalysis {
		return basicEvents, ccfReplacement, nil
	}

	groupIDs := make([]string, 0, len(input.CcfGroups))
	for id := range input.CcfGroups {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	for _, id := range groupIDs {
		group := input.CcfGroups[id]
		memberProb := make(map[string]float64, len(group.Members))
		for _, m := range group.Members {
			be, ok := basicEvents[normalizeKey(m)]
			if !ok {
				return nil, nil, Wrap(KindValidation, "ccf group "+group.OrigID, fmt.Errorf("unknown member %q", m))
			}
			memberProb[normalizeKey(m)] = be.Prob
		}
		expansion, err := group.Expand(memberProb)
		if err != nil {
			return nil, nil, Wrap(KindValidation, "ccf group "+group.OrigID, err)
		}
		for beID, be := range expansion.BasicEvents {
			basicEvents[beID] = be
		}
		for member, formula := range expansion.Replacement {
			ccfReplacement[member] = formula
		}
		log.Info("ccf group expanded", zap.String("group", group.OrigID), zap.String("model", group.Model.String()), zap.Int("synthetic_events", len(expansion.BasicEvents)))
	}
	return basicEvents, ccfReplacement, nil
}

// assignIndices assigns every basic event a fixed index in [1, GateIndexBase)
// in deterministic (sorted-name) order, returning the name->index map the
// builder needs, an index->BasicEvent map for probability/distribution
// lookups, and an index->display-name map for reporting.
func assignIndices(basicEvents map[string]*model.BasicEvent) (map[string]int, map[int]*model.BasicEvent, map[int]string) {
	names := make([]string, 0, len(basicEvents))
	for name := range basicEvents {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToIndex := make(map[string]int, len(names))
	indexToBE := make(map[int]*model.BasicEvent, len(names))
	indexNames := make(map[int]string, len(names))

	idx := 1
	for _, name := range names {
		be := basicEvents[name]
		nameToIndex[name] = idx
		indexToBE[idx] = be
		indexNames[idx] = be.OrigID
		idx++
	}
	return nameToIndex, indexToBE, indexNames
}
