package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"excitond/internal/config"
	"excitond/internal/excitation"
	"excitond/internal/experiment"
	"excitond/internal/population"
	"excitond/internal/random"
	"excitond/internal/record"
)

type runFlags struct {
	configPath  string
	from        string
	out         string
	seed        uint64
	excitations bool
}

func newRunCmd(opts *Options) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an experiment and record its emissions",
		Example: "  excitond run --config pulsed.yaml --out runs/pulsed --seed 42\n" +
			"  excitond run --from runs/generated --out runs/replayed",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runExperiment(ctx, opts, f)
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "Experiment config file (.yaml, .yml, .json, .toml)")
	cmd.Flags().StringVar(&f.from, "from", "", "Replay the recorded excitations of a run directory instead of generating new ones")
	cmd.Flags().StringVar(&f.out, "out", "", "Output run directory")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().BoolVar(&f.excitations, "excitations", false, "Also record the excitation events")
	cmd.MarkFlagsMutuallyExclusive("config", "from")
	cmd.MarkFlagsOneRequired("config", "from")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runExperiment(ctx context.Context, opts *Options, f runFlags) error {
	log := newLogger(opts)
	out, err := outputDir(f.out)
	if err != nil {
		return err
	}

	var (
		exp      record.RunConfig
		replayed *excitation.Profile
	)
	if f.from != "" {
		prev, err := record.ReadRun(f.from)
		if err != nil {
			return err
		}
		if prev.Excitations == nil {
			return fmt.Errorf("%s has no recorded excitations", f.from)
		}
		exp = prev.Config
		replayed, err = excitation.FromEvents(exp.Experiment.StartS, exp.Experiment.EndS, record.Excitations(prev.Excitations))
		if err != nil {
			return err
		}
	} else {
		cfg, err := loadConfig(f.configPath)
		if err != nil {
			return err
		}
		exp = record.RunConfig{Seed: cfg.Seed, Experiment: cfg.Experiment}
	}
	if f.seed != 0 {
		exp.Seed = f.seed
	}
	if err := config.ValidateExperiment(exp.Experiment); err != nil {
		return err
	}
	if exp.Seed, err = random.Resolve(exp.Seed); err != nil {
		return err
	}
	log = log.With().Uint64("seed", exp.Seed).Logger()
	rng := random.NewRand(exp.Seed)

	var (
		e       *experiment.Experiment
		profile *excitation.Profile
	)
	eopts := experiment.Options{RunID: "cli", Logger: &log}
	if replayed != nil {
		pop, err := population.New(population.ParamsFromConfig(exp.Experiment.Population), rng)
		if err != nil {
			return err
		}
		e = experiment.NewWithOptions(eopts)
		if err := e.Configure(experiment.SettingsFromConfig(exp.Experiment), replayed, pop); err != nil {
			return err
		}
		profile = replayed
	} else {
		setup, err := experiment.Build(exp.Experiment, rng, eopts)
		if err != nil {
			return err
		}
		e, profile = setup.Experiment, setup.Profile
	}

	run := record.Run{Config: exp}
	if f.excitations {
		run.Excitations = record.FromExcitations(profile.Events())
	}
	if err := e.Run(ctx); err != nil {
		return err
	}
	res, err := e.Report()
	if err != nil {
		return err
	}
	run.Emissions = record.FromEmissions(res.Emissions)
	if err := record.WriteRun(out, run); err != nil {
		return err
	}
	fmt.Fprintf(opts.Stdout, "seed=%d steps=%d injected=%d emissions=%d nonradiative=%d remaining=%d out=%s\n",
		exp.Seed, res.Steps, res.Injected, len(res.Emissions), res.Counts.NonRadiative, res.Remaining, out)
	return nil
}
