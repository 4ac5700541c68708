package mcp

import (
	"context"
	"errors"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"excitond/internal/analysis"
	"excitond/internal/registry"
	"excitond/pkg/types"
)

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "excitond_presets",
		Description: "List the experiment presets the simulator can run",
	}, s.handlePresets)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "excitond_simulate",
		Description: "Run a photoluminescence experiment from a preset or inline config and summarize its emissions",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "excitond_status",
		Description: "Report simulator load and run counters",
	}, s.handleStatus)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "excitond_runs",
		Description: "List recently finished runs, newest first",
	}, s.handleRuns)
}

func (s *Server) handlePresets(ctx context.Context, req *sdk.CallToolRequest, args PresetsInput) (*sdk.CallToolResult, PresetsOutput, error) {
	presets := s.svc.ListPresets()
	if presets == nil {
		presets = []types.Preset{}
	}
	return nil, PresetsOutput{Presets: presets, Count: len(presets)}, nil
}

func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (*sdk.CallToolResult, SimulateOutput, error) {
	if args.Config == nil && args.Preset == "" {
		return nil, SimulateOutput{}, errors.New("config or preset is required")
	}
	resp, err := s.svc.Simulate(ctx, types.SimulateRequest{Preset: args.Preset, Config: args.Config, Seed: args.Seed})
	if err != nil {
		s.log.Warn().Err(err).Str("preset", args.Preset).Msg("simulate tool failed")
		return nil, SimulateOutput{}, err
	}
	out := SimulateOutput{Seed: resp.Seed, Steps: resp.Steps, Remaining: resp.Remaining, Counts: resp.Counts}
	if len(resp.Emissions) == 0 {
		out.LifetimeError = analysis.ErrNoData.Error()
		return nil, out, nil
	}

	times := make([]float64, len(resp.Emissions))
	for i, e := range resp.Emissions {
		times[i] = e.TS
	}
	if sum, err := analysis.Summarize(times); err == nil {
		out.Emissions = TimeSummary{Count: sum.Count, MinS: sum.Min, MaxS: sum.Max, MeanS: sum.Mean, StdS: sum.Std}
	}
	if period := s.pulsePeriod(args); period > 0 {
		times = analysis.WrapToPulse(times, period)
	}
	if tau, err := analysis.FitLifetime(times, s.bins); err != nil {
		out.LifetimeError = err.Error()
	} else {
		out.LifetimeS = tau
	}
	return nil, out, nil
}

// pulsePeriod returns the pulse period of a pulse-train experiment, or 0.
func (s *Server) pulsePeriod(args SimulateInput) float64 {
	cfg := args.Config
	if cfg == nil {
		p, ok := registry.Find(s.svc.ListPresets(), args.Preset)
		if !ok {
			return 0
		}
		loaded, err := registry.Load(p)
		if err != nil {
			return 0
		}
		cfg = &loaded
	}
	src := cfg.Source
	if src.TimeGenerator != types.TimeGeneratorPulseTrain || !(src.RepetitionRateHz > 0) {
		return 0
	}
	return 1 / src.RepetitionRateHz
}

func (s *Server) handleStatus(ctx context.Context, req *sdk.CallToolRequest, args StatusInput) (*sdk.CallToolResult, types.StatusResponse, error) {
	return nil, s.svc.Status(), nil
}

func (s *Server) handleRuns(ctx context.Context, req *sdk.CallToolRequest, args RunsInput) (*sdk.CallToolResult, RunsOutput, error) {
	if args.Limit < 0 {
		return nil, RunsOutput{}, errors.New("limit must not be negative")
	}
	runs, err := s.svc.Runs(ctx, args.Limit)
	if err != nil {
		return nil, RunsOutput{}, err
	}
	if runs == nil {
		runs = []types.RunRecord{}
	}
	return nil, RunsOutput{Runs: runs, Count: len(runs)}, nil
}
