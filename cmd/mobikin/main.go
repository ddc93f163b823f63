package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/mobikin/internal/config"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	dt         float64
	duration   float64
	seed       int64
	integrator string
	controller string
	adaptive   bool
	tolerance  float64
	kp         float64
	ki         float64
	kd         float64
	target     float64
	damping    float64
	servoBody  string
	servoAxis  int
	exportJSON bool

	sweepBody    string
	sweepAxis    int
	sweepFrom    float64
	sweepTo      float64
	sweepSteps   int
	sweepWorkers int

	plotColumns []string

	log *zap.SugaredLogger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mobikin",
		Short:         "mobilizer kinematics for articulated rigid-body trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mobikin", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().BoolVar(&exportJSON, "json", false, "also write the run as JSON to stdout")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run columns",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotColumns, "columns", nil, "columns to plot, e.g. rotor.q1 (default: first six)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [model]",
		Short: "show slots, joint transforms and kinematic maps at the initial state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectModel,
	}
	addModelFlags(inspectCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run one simulation per initial angle and report conditioning",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepModel,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepBody, "body", "", "body to sweep (default: first)")
	sweepCmd.Flags().IntVar(&sweepAxis, "axis", 1, "body-fixed XYZ axis to sweep (0-2)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first angle in degrees")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 89, "last angle in degrees")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 12, "number of angles")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "concurrent runs (default 4)")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator]...",
		Short: "compare integrators on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addModelFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "animate a model in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addModelFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list models, or the presets of one model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, inspectCmd, sweepCmd, compareCmd, liveCmd, presetsCmd)

	err := rootCmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func addModelFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "preset of the model (default: first listed)")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.StringVar(&integrator, "integrator", config.IntegratorRK4, "integrator")
	f.StringVar(&controller, "controller", config.ControllerNone, "controller")
	f.BoolVar(&adaptive, "adaptive", false, "adaptive step size")
	f.Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
	f.Float64Var(&kp, "kp", config.DefaultKp, "servo kp")
	f.Float64Var(&ki, "ki", config.DefaultKi, "servo ki")
	f.Float64Var(&kd, "kd", config.DefaultKd, "servo kd")
	f.Float64Var(&target, "target", 0, "servo target coordinate")
	f.Float64Var(&damping, "damping", config.DefaultDamping, "damping controller gain")
	f.StringVar(&servoBody, "servo-body", "", "servoed body")
	f.IntVar(&servoAxis, "servo-axis", 0, "servoed coordinate of the body")
}

// loadConfig resolves a config from a file, a model preset or the defaults,
// then applies the flags the user set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	case len(args) > 0:
		model := args[0]
		names := config.ListPresets(model)
		if len(names) == 0 {
			return nil, fmt.Errorf("unknown model: %s (available: %v)", model, config.ListModels())
		}
		name := preset
		if name == "" {
			name = names[0]
		}
		cfg = config.GetPreset(model, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, names)
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tolerance
	}
	p := &cfg.ControllerParams
	if flags.Changed("kp") {
		p.Kp = kp
	}
	if flags.Changed("ki") {
		p.Ki = ki
	}
	if flags.Changed("kd") {
		p.Kd = kd
	}
	if flags.Changed("target") {
		p.Target = target
	}
	if flags.Changed("damping") {
		p.Damping = damping
	}
	if flags.Changed("servo-body") {
		p.Body = servoBody
	}
	if flags.Changed("servo-axis") {
		p.Axis = servoAxis
	}
	if cfg.Controller == config.ControllerServo && p.Body == "" && len(cfg.Bodies) > 0 {
		p.Body = cfg.Bodies[0].Name
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debugw("config resolved", "model", cfg.Model, "bodies", len(cfg.Bodies),
		"integrator", cfg.Integrator, "controller", cfg.Controller, "dt", cfg.Dt, "duration", cfg.Duration)
	return cfg, nil
}
