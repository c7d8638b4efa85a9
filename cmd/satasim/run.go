package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/satacmd/agent"
	"github.com/sarchlab/satacmd/config"
	"github.com/sarchlab/satacmd/monitoring"
)

type runFlags struct {
	configPath  string
	commands    int
	sectors     uint16
	lba         uint64
	maxCycles   uint64
	traceDB     string
	monitor     bool
	monitorPort int
	openBrowser bool
	verbose     bool
	noise       bool
	logFIS      bool
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a write and read back script through the command layer.",
	Long: `Run plays an identify followed by write and read back pairs through ` +
		`the command layer. It fails if any read differs from the data ` +
		`written, if the cycle limit is reached, or if the layer stalls.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, runOpts)
		if err != nil {
			return err
		}

		return runScript(cmd, cfg, runOpts)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.configPath, "config", "",
		"dotenv file with SATASIM_* settings (default .env if present)")
	f.IntVarP(&runOpts.commands, "commands", "n", 4,
		"number of write and read back pairs")
	f.Uint16Var(&runOpts.sectors, "sectors", 8,
		"sectors per command")
	f.Uint64Var(&runOpts.lba, "lba", 0,
		"first logical block address")
	f.Uint64Var(&runOpts.maxCycles, "max-cycles", 0,
		"stop after this many cycles (overrides SATASIM_MAX_CYCLES)")
	f.StringVar(&runOpts.traceDB, "trace-db", "",
		"record command traces into this SQLite database")
	f.BoolVar(&runOpts.monitor, "monitor", false,
		"serve the monitoring dashboard")
	f.IntVar(&runOpts.monitorPort, "monitor-port", 0,
		"port of the monitoring dashboard (0 picks one)")
	f.BoolVar(&runOpts.openBrowser, "open-browser", false,
		"open the monitoring dashboard in a browser")
	f.BoolVarP(&runOpts.verbose, "verbose", "v", false,
		"log state transitions and FIS traffic")
	f.BoolVar(&runOpts.noise, "noise", false,
		"make the drive send unexpected Set Device Bits FISes")
	f.BoolVar(&runOpts.logFIS, "log-fis", false,
		"log the wire image of every FIS")

	rootCmd.AddCommand(runCmd)
}

// loadConfig reads the config file and lets changed flags override it.
func loadConfig(cmd *cobra.Command, opts runFlags) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-cycles") {
		cfg.MaxCycles = opts.maxCycles
	}

	if flags.Changed("trace-db") {
		cfg.TraceDB = opts.traceDB
	}

	if flags.Changed("monitor-port") {
		cfg.MonitorPort = opts.monitorPort
	}

	return cfg, cfg.Validate()
}

func runScript(cmd *cobra.Command, cfg config.Config, opts runFlags) error {
	if opts.commands < 0 {
		return fmt.Errorf("invalid number of commands %d", opts.commands)
	}

	if opts.sectors == 0 {
		return fmt.Errorf("sectors per command must be positive")
	}

	log, flush, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ops := scriptOps(opts.commands, opts.lba, opts.sectors)

	var (
		m        *monitoring.Monitor
		bar      *monitoring.ProgressBar
		progress agent.Progress
	)
	if opts.monitor {
		m = monitoring.NewMonitor().
			WithLogger(log.WithName("monitor")).
			WithPortNumber(cfg.MonitorPort)
		bar = m.CreateProgressBar("Commands", uint64(len(ops)))
		progress = bar
	}

	h, err := newHarness(cfg,
		harnessOptions{noise: opts.noise, logFIS: opts.logFIS}, log, progress)
	if err != nil {
		return err
	}

	if m != nil {
		if err := startMonitor(m, h, opts.openBrowser); err != nil {
			return err
		}
	}

	h.agent.Enqueue(ops...)
	runErr := h.run(ctx)

	printSummary(cmd.OutOrStdout(), h)

	if err := h.close(); err != nil && runErr == nil {
		runErr = err
	}

	if m != nil && ctx.Err() == nil {
		m.CompleteProgressBar(bar)
		fmt.Fprintln(cmd.ErrOrStderr(),
			"Simulation finished. Press Ctrl-C to stop the monitor.")
		<-ctx.Done()
	}

	return runErr
}

func startMonitor(m *monitoring.Monitor, h *harness, openBrowser bool) error {
	m.RegisterEngine(h.engine)
	m.WithGatherer(h.registry)
	m.WithBufferAnalyzer(h.buffers)

	for _, c := range h.components() {
		m.RegisterComponent(c)
	}

	addr, err := m.StartServer()
	if err != nil {
		return err
	}

	if openBrowser {
		if err := browser.OpenURL(addr); err != nil {
			h.log.Error(err, "cannot open browser", "url", addr)
		}
	}

	return nil
}

func printSummary(w io.Writer, h *harness) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "OPERATION\tLBA\tSECTORS\tCYCLES\tMISMATCHES")
	for _, r := range h.agent.Results() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n",
			r.Op.Kind, r.Op.LBA, r.Op.Count,
			r.EndCycle-r.StartCycle, r.Mismatches)
	}
	_ = tw.Flush()

	stats := h.drive.Stats()
	fmt.Fprintf(w,
		"cycles=%d time=%.9fs commands=%d errors=%d "+
			"sectors_read=%d sectors_written=%d unexpected=%d\n",
		h.engine.CurrentCycle(), float64(h.engine.CurrentTime()),
		stats.Commands, stats.Errors,
		stats.SectorsRead, stats.SectorsWritten, stats.Unexpected)

	fmt.Fprintf(w,
		"layer_busy=%.9fs drive_busy=%.9fs avg_command_time=%.9fs\n",
		float64(h.layerBusy.BusyTime()), float64(h.driveBusy.BusyTime()),
		float64(h.latency.Total().Mean))

	for _, op := range h.latency.Whats() {
		l := h.latency.Of(op)
		fmt.Fprintf(w, "latency %s count=%d mean=%.9fs min=%.9fs max=%.9fs\n",
			op, l.Count, float64(l.Mean), float64(l.Min), float64(l.Max))
	}

	for _, step := range h.steps.GetStepNames() {
		fmt.Fprintf(w, "state %s entered %d times by %d commands\n",
			step, h.steps.GetStepCount(step), h.steps.GetTaskCount(step))
	}

	h.buffers.Report(w)
}
