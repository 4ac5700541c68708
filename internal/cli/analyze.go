package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"excitond/internal/analysis"
	"excitond/internal/record"
	"excitond/pkg/types"
)

const histogramWidth = 50

func newAnalyzeCmd(opts *Options) *cobra.Command {
	var (
		dataDir string
		bins    int
	)
	cmd := &cobra.Command{
		Use:     "analyze",
		Short:   "Summarize a recorded run: time histograms, pulse clustering and lifetime",
		Example: "  excitond analyze --data-dir runs/pulsed --bins 40",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyzeRun(opts.Stdout, dataDir, bins)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Run directory written by run or generate")
	cmd.Flags().IntVar(&bins, "bins", 30, "Histogram bins")
	_ = cmd.MarkFlagRequired("data-dir")
	return cmd
}

func analyzeRun(w io.Writer, dir string, bins int) error {
	run, err := record.ReadRun(dir)
	if err != nil {
		return err
	}
	if run.Excitations == nil && run.Emissions == nil {
		return fmt.Errorf("%s holds no recorded events", dir)
	}
	src := run.Config.Experiment.Source
	pulsed := src.TimeGenerator == types.TimeGeneratorPulseTrain && src.RepetitionRateHz > 0
	fmt.Fprintf(w, "run %s seed=%d\n", dir, run.Config.Seed)

	if len(run.Excitations) > 0 {
		times := record.Times(run.Excitations)
		if err := describeTimes(w, "excitation times", times, bins); err != nil {
			return err
		}
		if pulsed {
			frac, err := analysis.PulseFraction(times, 1/src.RepetitionRateHz, src.PulseFWHMS)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  within one FWHM of a pulse: %.2f%%\n", 100*frac)
		}
	}
	if len(run.Emissions) > 0 {
		times := record.Times(run.Emissions)
		if err := describeTimes(w, "emission times", times, bins); err != nil {
			return err
		}
		fitTimes := times
		if pulsed {
			fitTimes = analysis.WrapToPulse(times, 1/src.RepetitionRateHz)
		}
		tau, err := analysis.FitLifetime(fitTimes, bins)
		if err != nil {
			fmt.Fprintf(w, "  lifetime fit: %v\n", err)
		} else {
			fmt.Fprintf(w, "  fitted lifetime: %.4g s\n", tau)
		}
	}
	return nil
}

func describeTimes(w io.Writer, label string, times []float64, bins int) error {
	s, err := analysis.Summarize(times)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: n=%d min=%.4g max=%.4g mean=%.4g std=%.4g\n", label, s.Count, s.Min, s.Max, s.Mean, s.Std)
	h, err := analysis.NewHistogram(times, bins)
	if err != nil {
		return err
	}
	peak := 0.0
	for _, c := range h.Counts {
		peak = max(peak, c)
	}
	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = int(c / peak * histogramWidth)
		}
		fmt.Fprintf(w, "  %12.4g %8d %s\n", h.Edges[i], int(c), strings.Repeat("#", bar))
	}
	return nil
}
