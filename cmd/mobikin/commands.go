package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mobikin/internal/config"
	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/experiment"
	"github.com/san-kum/mobikin/internal/mobilizer"
	"github.com/san-kum/mobikin/internal/sim"
	"github.com/san-kum/mobikin/internal/storage"
	"github.com/san-kum/mobikin/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "running %s (%d bodies)...\n", cfg.Model, exp.Tree().Len())
	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, exp.Tree(), result)
	if err != nil {
		return err
	}
	if exportJSON {
		return storage.ExportJSON(os.Stdout, cfg, exp.Tree(), result)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("stopped: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tBODIES\tDURATION\tDT\tINTEG\tCTRL\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Bodies),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Controller,
			run.Steps,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	// Columns[0] is time; state entry i is column i+1.
	index := make(map[string]int, len(meta.Columns))
	for i, c := range meta.Columns[1:] {
		index[c] = i
	}
	columns := plotColumns
	if len(columns) == 0 {
		n := min(6, len(states[0]))
		columns = meta.Columns[1 : n+1]
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))
	for _, c := range columns {
		idx, ok := index[c]
		if !ok || idx >= len(states[0]) {
			return fmt.Errorf("unknown column %q (state columns: %v)", c, meta.Columns[1:meta.NQ+meta.NU+1])
		}
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][idx]
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(c),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func inspectModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}
	t := exp.Tree()
	sys := exp.System()
	sys.Realize(exp.InitialState())
	d := sys.Digest()

	l := t.Layout()
	fmt.Println(viz.Title.Render(strings.ToUpper(cfg.Model)))
	fmt.Println(viz.Row("nq", fmt.Sprint(l.NQ)) + "  " + viz.Row("nu", fmt.Sprint(l.NU)) + "  " + viz.Row("usq", fmt.Sprint(l.NUSq)))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tBODY\tJOINT\tPARENT\tQ\tU\tUSQ\tANGLES\tQUAT")
	for i, b := range t.Bodies() {
		m := b.Mob
		parent := "ground"
		if b.Parent >= 0 {
			parent = t.Body(b.Parent).Name
		}
		angles := "-"
		if start, n, ok := m.IsUsingAngles(); ok {
			angles = fmt.Sprintf("q[%d:%d]", start, start+n)
		}
		quat := "-"
		if start, ok := m.IsUsingQuaternion(); ok {
			quat = fmt.Sprintf("q[%d:%d]", start, start+4)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", i, b.Name, m.Type(), parent,
			slots(m.QIndex(), m.NQ()), slots(m.UIndex(), m.NU()), slots(m.USqIndex(), m.NU()*m.NU()), angles, quat)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	cond, worst := t.Conditioning(d)
	for i, b := range t.Bodies() {
		m := b.Mob
		x := d.Transform(i)
		fmt.Println()
		fmt.Println(viz.Title.Render(fmt.Sprintf("%s (%s)", b.Name, m.Type())))
		fmt.Println(viz.Row("X_FM.p", fmt.Sprintf("%.4f %.4f %.4f", x.P.X, x.P.Y, x.P.Z)))
		xyz := x.R.BodyFixedXYZ().Mul(180 / math.Pi)
		fmt.Println(viz.Row("X_FM.R xyz", fmt.Sprintf("%.3f %.3f %.3f deg", xyz.X, xyz.Y, xyz.Z)))
		if m.NU() == 0 {
			continue
		}
		panels := []string{
			viz.Matrix("H (rows w;v)", hMatrix(d.H()[m.UIndex():m.UIndex()+m.NU()])),
			viz.Matrix("N", mobilizer.NMatrix(m, d)),
			viz.Matrix("N⁻¹", mobilizer.NInvMatrix(m, d)),
		}
		fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	}
	if worst >= 0 {
		fmt.Println()
		fmt.Println(viz.Row("cond(N⁻¹)", viz.ConditionStyle(cond).Render(fmt.Sprintf("%.4g", cond))+
			" at "+t.Body(worst).Name+" "+viz.ConditioningBar(cond, 24)))
	}
	return nil
}

func sweepModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	body := sweepBody
	if body == "" {
		body = cfg.Bodies[0].Name
	}
	if sweepSteps < 1 {
		return fmt.Errorf("steps must be positive, got %d", sweepSteps)
	}
	angles := make([]float64, sweepSteps)
	for i := range angles {
		angles[i] = sweepFrom
		if sweepSteps > 1 {
			angles[i] += (sweepTo - sweepFrom) * float64(i) / float64(sweepSteps-1)
		}
	}

	start := time.Now()
	points, err := experiment.Sweep(cmd.Context(), cfg, experiment.NewRegistry(), log, body, sweepAxis, angles, sweepWorkers)
	if points == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "some runs failed: %v\n", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ANGLE\tMAX COND\tSTEPS\tSTATUS")
	logc := make([]float64, 0, len(points))
	for _, p := range points {
		status, steps := "ok", 0
		if p.Result == nil {
			status = "failed"
		} else {
			steps = p.Result.StepsTaken
			if len(p.Result.Errors) > 0 {
				status = p.Result.Errors[0].Error()
			}
		}
		fmt.Fprintf(w, "%.2f\t%.4g\t%d\t%s\n", p.Angle, p.Conditioning, steps, status)
		logc = append(logc, math.Log10(math.Min(math.Max(p.Conditioning, 1), 1e16)))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d runs in %v\n\n", len(points), time.Since(start))
	if len(logc) > 1 {
		fmt.Println(asciigraph.Plot(logc, asciigraph.Height(8), asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("log10 max cond vs %s axis %d angle", body, sweepAxis))))
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	x0 := exp.InitialState()

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", cfg.Model, cfg.Dt, cfg.Duration)
	fmt.Printf("%-12s  %8s  %14s  %12s  %10s\n", "integrator", "steps", "diff_vs_first", "max_cond", "time_ms")
	fmt.Println(strings.Repeat("-", 64))

	var reference dynamo.State
	for _, name := range args[1:] {
		integ, err := registry.GetIntegrator(name)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}
		ctrl, err := registry.GetController(cfg.Controller, cfg, exp.Tree(), exp.PrescribedAccelerations())
		if err != nil {
			return err
		}
		s := sim.New(exp.System(), integ, ctrl)
		s.SetLogger(log)
		for _, m := range registry.DefaultMetrics(exp.Tree()) {
			s.AddMetric(m)
		}

		start := time.Now()
		result, err := s.Run(context.Background(), x0, cfg.RunConfig())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		final := result.States[len(result.States)-1]
		diff := 0.0
		if reference == nil {
			reference = final
		} else {
			diff = final.Sub(reference).Norm()
		}
		fmt.Printf("%-12s  %8d  %14.3e  %12.4g  %10.2f\n", name, result.StepsTaken, diff,
			result.Metrics["max_conditioning"], float64(elapsed.Microseconds())/1000)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	ctrl, err := registry.GetController(cfg.Controller, cfg, exp.Tree(), exp.PrescribedAccelerations())
	if err != nil {
		return err
	}
	return viz.Run(viz.NewModel(exp.System(), integ, ctrl, exp.InitialState(), cfg.Dt, cfg.Model))
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("models:")
		for _, m := range config.ListModels() {
			fmt.Printf("  %-10s %v\n", m, config.ListPresets(m))
		}
		return nil
	}
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		c := config.GetPreset(args[0], p)
		fmt.Printf("  %-12s %d bodies, %s, %s\n", p, len(c.Bodies), c.Integrator, c.Controller)
	}
	return nil
}
