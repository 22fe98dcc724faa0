// Command faultree runs one fault tree analysis from a YAML definition file
// and prints the result as text or JSON, per §6's described CLI surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/faultgraph/engine/config"
	"github.com/faultgraph/engine/fta"
	"github.com/faultgraph/engine/model"
	"github.com/faultgraph/engine/report"
)

var (
	probability bool
	importance  bool
	uncertainty bool
	ccf         bool
	limitOrder  int
	cutOff      float64
	numSums     int
	missionTime float64
	numTrials   int
	seed        int64
	approxFlag  string
	outputPath  string
	jsonOutput  bool
	verbose     bool

	rootCmd = &cobra.Command{
		Use:   "faultree [file]",
		Short: "Analyze a fault tree definition",
		Long: `faultree loads a fault tree definition from a YAML file, runs minimal
cut set generation and the probability/uncertainty engines over it, and
prints the result as a text report or as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
)

func init() {
	rootCmd.Flags().BoolVar(&probability, "probability", true, "run probability analysis")
	rootCmd.Flags().BoolVar(&importance, "importance", false, "run Fussell-Vesely importance analysis")
	rootCmd.Flags().BoolVar(&uncertainty, "uncertainty", false, "run Monte Carlo uncertainty analysis")
	rootCmd.Flags().BoolVar(&ccf, "ccf", false, "expand common-cause-failure groups")
	rootCmd.Flags().IntVar(&limitOrder, "limit-order", 0, "maximum minimal cut set order (0 = use file settings)")
	rootCmd.Flags().Float64Var(&cutOff, "cut-off", -1, "probability cut-off below which a minimal cut set is dropped (-1 = use file settings)")
	rootCmd.Flags().IntVar(&numSums, "num-sums", 0, "number of inclusion-exclusion terms for the default approximation (0 = use file settings)")
	rootCmd.Flags().Float64Var(&missionTime, "mission-time", 0, "mission time for time-dependent basic events (0 = use file settings)")
	rootCmd.Flags().IntVar(&numTrials, "num-trials", 0, "number of Monte Carlo trials (0 = use file settings)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "Monte Carlo RNG seed (0 = use file settings)")
	rootCmd.Flags().StringVar(&approxFlag, "approx", "", "probability approximation: rare-event, mcub, or default (empty = use file settings)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to this path instead of stdout")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit a JSON report instead of text")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level structured logging")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input, settings, err := config.Load(args[0])
	if err != nil {
		return err
	}
	applyOverrides(cmd, &settings)
	if err := settings.Validate(); err != nil {
		return fta.Wrap(fta.KindValidation, "cli flags", err)
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	run, err := fta.Run(context.Background(), input, settings, logger)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fta.Wrap(fta.KindIO, outputPath, err)
		}
		defer f.Close()
		out = f
	}

	if jsonOutput {
		return report.WriteJSON(out, run)
	}
	return report.WriteText(out, run)
}

// applyOverrides layers CLI flags on top of the settings a config document
// already supplied. A bool flag only overrides when the caller actually
// passed it, so an analysis toggle left out of the command line falls back
// to whatever the document set rather than silently reverting to the flag's
// zero value.
func applyOverrides(cmd *cobra.Command, settings *model.Settings) {
	if cmd.Flags().Changed("probability") {
		settings.ProbabilityAnalysis = probability
	}
	if cmd.Flags().Changed("importance") {
		settings.ImportanceAnalysis = importance
	}
	if cmd.Flags().Changed("uncertainty") {
		settings.UncertaintyAnalysis = uncertainty
	}
	if cmd.Flags().Changed("ccf") {
		settings.CcfAnalysis = ccf
	}
	if limitOrder > 0 {
		settings.LimitOrder = limitOrder
	}
	if cutOff >= 0 {
		settings.CutOff = cutOff
	}
	if numSums > 0 {
		settings.NumSums = numSums
	}
	if missionTime > 0 {
		settings.MissionTime = missionTime
	}
	if numTrials > 0 {
		settings.NumTrials = numTrials
	}
	if seed != 0 {
		settings.Seed = seed
	}
	if approxFlag != "" {
		if approx, err := model.ParseApproximation(approxFlag); err == nil {
			settings.Approx = approx
			settings.ApproxName = approxFlag
		}
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitCode := 1
		var kindErr *fta.Error
		if errors.As(err, &kindErr) {
			switch kindErr.Kind {
			case fta.KindIO:
				exitCode = 2
			case fta.KindValidation:
				exitCode = 3
			case fta.KindLogic:
				exitCode = 4
			}
		}
		fmt.Fprintln(os.Stderr, "faultree:", err)
		os.Exit(exitCode)
	}
}
