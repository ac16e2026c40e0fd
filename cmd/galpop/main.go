package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/starsweep/galpop/internal/config"
	"github.com/starsweep/galpop/internal/orbit"
	"github.com/starsweep/galpop/internal/pop"
	"github.com/starsweep/galpop/internal/storage"
	"github.com/starsweep/galpop/internal/tui"
)

var (
	nBinaries    int
	processes    int
	m1Cutoff     float64
	vDispersion  float64
	maxEvTime    float64
	timestepSize float64
	seed         int64
	potentialArg string
	pointMass    float64
	output       string
	overwrite    bool
	showProgress bool
	configFile   string
	preset       string
	// plot flags
	binNum    int
	component string
	// export flags
	filters []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "galpop",
		Short: "binary-star population synthesis with galactic orbits",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "sample, evolve and integrate a population, then save it",
		RunE:  runPopulation,
	}
	runCmd.Flags().IntVarP(&nBinaries, "n-binaries", "n", config.DefaultNBinaries, "binaries to sample")
	runCmd.Flags().IntVar(&processes, "processes", config.DefaultProcesses, "integration workers")
	runCmd.Flags().Float64Var(&m1Cutoff, "m1-cutoff", config.DefaultM1Cutoff, "primary mass cutoff (Msun)")
	runCmd.Flags().Float64Var(&vDispersion, "v-dispersion", config.DefaultVDispersion, "birth velocity dispersion (km/s)")
	runCmd.Flags().Float64Var(&maxEvTime, "max-ev-time", config.DefaultMaxEvTime, "evolution span (Myr)")
	runCmd.Flags().Float64Var(&timestepSize, "dt", config.DefaultTimestepSize, "orbit timestep (Myr)")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().StringVar(&potentialArg, "potential", "milkyway", "galactic potential (milkyway, pointmass, zero)")
	runCmd.Flags().Float64Var(&pointMass, "point-mass", 1e11, "point mass (Msun, pointmass potential)")
	runCmd.Flags().StringVarP(&output, "out", "o", "population", "output directory")
	runCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing output directory")
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "show a progress view")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	infoCmd := &cobra.Command{
		Use:   "info [dir]",
		Short: "summarize a saved population",
		Args:  cobra.ExactArgs(1),
		RunE:  showInfo,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [dir]",
		Short: "plot one binary's galactic orbit",
		Args:  cobra.ExactArgs(1),
		RunE:  plotOrbit,
	}
	plotCmd.Flags().IntVar(&binNum, "bin", 0, "binary number to plot")
	plotCmd.Flags().StringVar(&component, "component", "primary", "trajectory to plot (primary, secondary)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "export present-day observables to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportObservables,
	}
	exportCmd.Flags().StringSliceVar(&filters, "filters", pop.DefaultFilters, "photometric filters")

	rootCmd.AddCommand(runCmd, infoCmd, plotCmd, presetsCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override preset and config file
	if cmd.Flags().Changed("n-binaries") {
		cfg.NBinaries = nBinaries
	}
	if cmd.Flags().Changed("processes") {
		cfg.Processes = processes
	}
	if cmd.Flags().Changed("m1-cutoff") {
		cfg.M1Cutoff = m1Cutoff
	}
	if cmd.Flags().Changed("v-dispersion") {
		cfg.VDispersion = vDispersion
	}
	if cmd.Flags().Changed("max-ev-time") {
		cfg.MaxEvTime = maxEvTime
	}
	if cmd.Flags().Changed("dt") {
		cfg.TimestepSize = timestepSize
	}
	if cmd.Flags().Changed("potential") {
		cfg.Potential = potentialArg
	}
	if cmd.Flags().Changed("point-mass") {
		cfg.PointMassMsun = pointMass
	}
	if cfg.Seed == 0 || cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("out") || cfg.Output == "" {
		cfg.Output = output
	}
	return cfg, nil
}

func runPopulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	field, err := cfg.Field()
	if err != nil {
		return err
	}

	pcfg := pop.Config{
		NBinaries:    cfg.NBinaries,
		Processes:    cfg.Processes,
		M1Cutoff:     cfg.M1Cutoff,
		VDispersion:  cfg.VDispersion,
		MaxEvTime:    cfg.MaxEvTime,
		TimestepSize: cfg.TimestepSize,
		Seed:         cfg.Seed,
		Potential:    field,
		Settings:     cfg.Evolve,
	}

	if showProgress {
		return runWithProgress(pcfg, cfg.Output)
	}

	p := pop.New(pcfg)
	start := time.Now()
	if err := p.CreatePopulation(); err != nil {
		return err
	}
	if err := storage.Save(cfg.Output, p, overwrite); err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("saved %d binaries to %s\n", p.NBinariesMatch, cfg.Output)
	return nil
}

func runWithProgress(pcfg pop.Config, out string) error {
	msgs := make(chan tea.Msg, 64)
	pcfg.Progress = func(phase string, done, total int) {
		select {
		case msgs <- tui.ProgressMsg{Phase: phase, Done: done, Total: total}:
		default:
		}
	}

	p := pop.New(pcfg)
	go func() {
		err := p.CreatePopulation()
		if err == nil {
			err = storage.Save(out, p, overwrite)
		}
		msgs <- tui.DoneMsg{Err: err}
	}()

	prog := tea.NewProgram(tui.NewModel(msgs))
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}

var (
	infoKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(18)
	infoValStyle = lipgloss.NewStyle().Bold(true)
	infoBox      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

func showInfo(cmd *cobra.Command, args []string) error {
	p, err := storage.Load(args[0])
	if err != nil {
		return err
	}

	var bound, disrupted, missing int
	for _, o := range p.Orbits {
		switch o.Kind {
		case orbit.Bound:
			bound++
		case orbit.Disrupted:
			disrupted++
		case orbit.Missing:
			missing++
		}
	}

	line := func(k, v string) string {
		return infoKeyStyle.Render(k) + infoValStyle.Render(v) + "\n"
	}
	body := line("phase", p.Phase().String()) +
		line("binaries sampled", strconv.Itoa(p.NBinaries)) +
		line("above cutoff", strconv.Itoa(p.NBinariesMatch)) +
		line("m1 cutoff", fmt.Sprintf("%g Msun", p.M1Cutoff)) +
		line("evolution span", fmt.Sprintf("%g Myr", p.MaxEvTime)) +
		line("mass in binaries", fmt.Sprintf("%.1f Msun", p.MassBinaries)) +
		line("mass in singles", fmt.Sprintf("%.1f Msun", p.MassSingles)) +
		line("potential", p.Potential.Describe()) +
		line("orbits", fmt.Sprintf("%d bound, %d disrupted, %d missing", bound, disrupted, missing))
	fmt.Println(infoBox.Render(body))
	return nil
}

func plotOrbit(cmd *cobra.Command, args []string) error {
	p, err := storage.Load(args[0])
	if err != nil {
		return err
	}

	idx := -1
	for i, b := range p.InitC {
		if b.BinNum == binNum {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(p.Orbits) {
		return fmt.Errorf("no orbit for binary %d", binNum)
	}

	o := p.Orbits[idx]
	if o.Kind == orbit.Missing {
		return fmt.Errorf("binary %d has no trajectory", binNum)
	}
	tr := o.Primary
	if component == "secondary" {
		if o.Kind != orbit.Disrupted {
			return fmt.Errorf("binary %d is %s, no secondary trajectory", binNum, o.Kind)
		}
		tr = o.Secondary
	}

	fmt.Printf("binary %d (%s, %s): %d samples over %.0f Myr\n\n",
		binNum, o.Kind, component, tr.Len(), tr.Times[tr.Len()-1]-tr.Times[0])

	radius := make([]float64, tr.Len())
	height := make([]float64, tr.Len())
	for i, s := range tr.States {
		radius[i] = math.Hypot(s.Pos[0], s.Pos[1])
		height[i] = s.Pos[2]
	}

	fmt.Println(asciigraph.Plot(radius,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("galactocentric radius (kpc)"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(height,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("height above plane (kpc)"),
	))
	return nil
}

func exportObservables(cmd *cobra.Command, args []string) error {
	p, err := storage.Load(args[0])
	if err != nil {
		return err
	}

	rows, err := p.Observables(filters)
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"bin_num", "abs_bol_1", "abs_bol_2"}
	for _, f := range filters {
		header = append(header, "app_"+f+"_1")
	}
	for _, f := range filters {
		header = append(header, "app_"+f+"_2")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	fstr := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.BinNum), fstr(r.AbsBol1), fstr(r.AbsBol2)}
		for _, f := range filters {
			rec = append(rec, fstr(r.App1[f]))
		}
		for _, f := range filters {
			rec = append(rec, fstr(r.App2[f]))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
