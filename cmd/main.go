package main // import "ohmulator"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/leoll2/Ohmulator/internal/config"
	"github.com/leoll2/Ohmulator/pkg/analysis"
	"github.com/leoll2/Ohmulator/pkg/circuit"
	"github.com/leoll2/Ohmulator/pkg/netlist"
	"github.com/leoll2/Ohmulator/pkg/report"
	"github.com/leoll2/Ohmulator/pkg/util"
)

func getKeys(results map[string][]float64, prefix, suffix string) []string {
	var keys []string
	for k := range results {
		if strings.HasPrefix(k, prefix) && strings.HasSuffix(k, suffix) {
			keys = append(keys, strings.TrimSuffix(k, suffix))
		}
	}
	sort.Strings(keys)
	return keys
}

func printResults(w io.Writer, results map[string][]float64) {
	fmt.Fprintln(w, "\nAnalysis Results:")
	fmt.Fprintln(w, "================")

	// AC
	if omegas, isAC := results["OMEGA"]; isAC {
		fmt.Fprintf(w, "\nAC Analysis Results (%d frequency points):\n", len(omegas))
		fmt.Fprintln(w, "Omega          Node Voltages (Magnitude/Phase)        Branch Currents (Magnitude/Phase)")
		fmt.Fprintln(w, "-----------------------------------------------------------------------------")

		names := append(getKeys(results, "V(", "_MAG"), getKeys(results, "I(", "_MAG")...)
		for i, omega := range omegas {
			fmt.Fprintf(w, "%-13s", util.FormatOmega(omega))
			for _, name := range names {
				fmt.Fprintf(w, "%s  ", util.FormatMagnitudePhase(name, results[name+"_MAG"][i], results[name+"_PHASE"][i]))
			}
			fmt.Fprintln(w)
		}
		return
	}

	// DC Sweep
	if sweep1, isDC := results["SWEEP1"]; isDC {
		fmt.Fprintf(w, "\nDC Sweep Analysis Results (%d points):\n", len(sweep1))
		fmt.Fprintln(w, "Sweep Values    Node Voltages        Branch Currents")
		fmt.Fprintln(w, "------------------------------------------------")

		voltageNames := getKeys(results, "V(", "")
		currentNames := getKeys(results, "I(", "")
		for i := range sweep1 {
			fmt.Fprintf(w, "S=%-9s  ", util.FormatValueFactor(sweep1[i], ""))
			for _, name := range voltageNames {
				fmt.Fprintf(w, "%s=%s  ", name, util.FormatValueFactor(results[name][i], "V"))
			}
			for _, name := range currentNames {
				fmt.Fprintf(w, "%s=%s  ", name, util.FormatValueFactor(results[name][i], "A"))
			}
			fmt.Fprintln(w)
		}
		return
	}

	// Operating point
	fmt.Fprintln(w, "\nNode Voltages:")
	for _, name := range getKeys(results, "V(", "") {
		fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], "V"))
	}
	fmt.Fprintln(w, "\nBranch Currents:")
	for _, name := range getKeys(results, "I(", "") {
		fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], "A"))
	}
}

// printSolution prints every node voltage and branch current as a waveform,
// the DC part plus the phasor at the circuit frequency. With ac set the
// phasor is also shown as magnitude and phase.
func printSolution(w io.Writer, ckt *circuit.Circuit, res *analysis.Result, omega float64, ac bool) {
	phasor := func(v complex128) string {
		if !ac {
			return ""
		}
		return "    " + util.FormatPhasor(v)
	}

	fmt.Fprintln(w, "\nNode Voltages:")
	for _, n := range ckt.Nodes()[1:] {
		fmt.Fprintf(w, "V(%s) = %s%s\n", analysis.NodeLabel(n),
			util.FormatWaveform(res.VoltagesDC[n.ID], res.VoltagesAC[n.ID], omega), phasor(res.VoltagesAC[n.ID]))
	}

	fmt.Fprintln(w, "\nBranch Currents:")
	for _, c := range analysis.SortedByEndpoints(res.CurrentsDC) {
		b := ckt.Branch(c.Branch)
		ic := res.CurrentsAC[c.Branch].Value
		fmt.Fprintf(w, "I(%s) %d→%d = %s%s\n", analysis.BranchLabel(b), c.Point1, c.Point2,
			util.FormatWaveform(c.Value, ic, omega), phasor(ic))
	}
}

// writeReport renders rep into a new file at path.
func writeReport(path string, rep *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rep.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadConfig(path, solver string, verbose bool, reportPath string) config.Config {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	// Flags win over the file
	if solver != "" {
		cfg.Solver = solver
	}
	if verbose {
		cfg.Verbose = true
	}
	if reportPath != "" {
		cfg.Report = reportPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func main() {
	configPath := flag.String("config", "", "TOML run configuration")
	solver := flag.String("solver", "", "linear solver: dense or sparse")
	verbose := flag.Bool("v", false, "trace bypass groups and nodal systems")
	reportPath := flag.String("report", "", "write an HTML chart report")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: ohmulator [-config file] [-solver dense|sparse] [-v] [-report out.html] <netlist_file>")
	}
	cfg := loadConfig(*configPath, *solver, *verbose, *reportPath)

	var logger *log.Logger
	if cfg.Verbose {
		logger = log.New(os.Stderr, "ohmulator: ", 0)
	}

	// 1. Open and read netlist
	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error reading netlist file: %v", err)
	}

	// 2. Parse netlist
	nd, err := netlist.Parse(string(content))
	if err != nil {
		log.Fatalf("Error parsing netlist: %v", err)
	}

	// 3. Setup circuit
	sess, err := netlist.Build(nd, logger)
	if err != nil {
		log.Fatalf("Error creating circuit: %v", err)
	}
	opts := cfg.Apply(sess.Options())
	ckt := sess.Snapshot()

	rep := report.New(nd.Title)
	rep.AddTopology(ckt)

	// 4. Run analysis
	var degenerate bool
	switch nd.Analysis {
	case netlist.AnalysisOP:
		res, err := sess.Solve(context.Background(), opts)
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
		omega, _ := sess.Omega()
		if opts.Omega > 0 {
			omega = opts.Omega
		}
		fmt.Printf("%s\n", nd.Title)
		printSolution(os.Stdout, ckt, res, omega, opts.AC)
		rep.AddSolution(ckt, res, opts)
		degenerate = res.Degenerate

	case netlist.AnalysisAC:
		analyzer := analysis.NewAC(nd.ACParam.Omega, opts)
		analyzer.Logger = logger
		if err := run(analyzer, ckt); err != nil {
			log.Fatalf("AC analysis failed: %v", err)
		}
		printResults(os.Stdout, analyzer.GetResults())
		degenerate = analyzer.Degenerate()

	case netlist.AnalysisDC:
		param := nd.DCParam
		analyzer, err := analysis.NewDCSweep(param.Source, param.Start, param.Stop, param.Increment, opts)
		if err != nil {
			log.Fatalf("DC sweep setup failed: %v", err)
		}
		analyzer.Logger = logger
		if err := run(analyzer, ckt); err != nil {
			log.Fatalf("DC sweep failed: %v", err)
		}
		printResults(os.Stdout, analyzer.GetResults())
		if err := rep.AddSweep(param.Source, analyzer.GetResults()); err != nil {
			log.Fatalf("Report failed: %v", err)
		}
		degenerate = analyzer.Degenerate()
	}

	if degenerate {
		fmt.Println("\nwarning: division by zero while solving, part of the circuit may be floating")
	}

	// 5. Report
	if cfg.Report != "" {
		if err := writeReport(cfg.Report, rep); err != nil {
			log.Fatalf("Error writing report: %v", err)
		}
	}
}

func run(analyzer analysis.Analysis, ckt *circuit.Circuit) error {
	if err := analyzer.Setup(ckt); err != nil {
		return err
	}
	return analyzer.Execute()
}
