// Command scgms-run is a thin CLI front-end exercising the abi package
// end to end: load a persistent filter-chain configuration, run it to
// completion, or drive a single parameter-optimization pass over it.
// Grounded on the flag/signal-driven shape of
// _examples/pascaldekloe-part5/cmd/iecat/main.go, adapted to this
// module's obslog/abi stack in place of that command's plain
// log.Logger and hand-rolled session loop.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"flag"

	"github.com/joeycumines/logiface"

	"github.com/smartcgms-go/core/abi"
	"github.com/smartcgms-go/core/capability"
	"github.com/smartcgms-go/core/chainconfig"
	"github.com/smartcgms-go/core/guid"
	"github.com/smartcgms-go/core/obslog"
	"github.com/smartcgms-go/core/optimizer"
	"github.com/smartcgms-go/core/resultcode"
)

var (
	configFlag  = flag.String("config", "", "Path to a persistent filter-chain configuration `file` (required).")
	pluginsFlag = flag.String("plugins", "", "Plugin-library root `directory`; libraries are discovered under its solvers/ subdirectory.")
	verboseFlag = flag.Bool("v", false, "Log at Debug level instead of Informational.")

	optimizeFlag    = flag.String("optimize", "", "Run a single optimization pass instead of executing the chain: `filterIndex:paramName[,filterIndex:paramName...]`.")
	solverFlag      = flag.String("solver", "", "Solver `GUID` for -optimize (required with -optimize).")
	populationFlag  = flag.Uint("population", 20, "Solver population `size` for -optimize.")
	generationsFlag = flag.Uint("generations", 50, "Solver generation `count` for -optimize.")
)

var CmdLog *obslog.Logger

func main() {
	flag.Parse()

	level := logiface.LevelInformational
	if *verboseFlag {
		level = logiface.LevelDebug
	}
	CmdLog = obslog.New(os.Stderr, level)
	obslog.SetDefault(CmdLog)

	if *configFlag == "" {
		fatal(resultcode.InvalidArg, "missing required -config flag")
	}

	rt, err := abi.NewProcess(*pluginsFlag)
	if err != nil {
		fatal(resultcode.FromError(err), "loading plugins from %s: %v", *pluginsFlag, err)
	}

	if *optimizeFlag != "" {
		runOptimize(rt)
		return
	}
	runExecute(rt)
}

// runExecute loads the configuration as text and runs it through the
// one-shot convenience surface, printing every outgoing event until
// SIGINT or SIGTERM arrives. A chain that shuts itself down does not
// end the command.
func runExecute(rt *abi.Runtime) {
	text, err := os.ReadFile(*configFlag)
	if err != nil {
		fatal(resultcode.CantOpenFile, "reading %s: %v", *configFlag, err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	session, err := rt.ExecuteSCGMSConfiguration(string(text), printWireEvent, func(f capability.Filter) error {
		CmdLog.Debug().Logf("filter built: %T", f)
		return nil
	})
	if err != nil {
		fatal(resultcode.FromError(err), "building chain: %v", err)
	}
	if !session.Errors().Empty() {
		for _, msg := range session.Errors().Entries() {
			CmdLog.Warning().Logf("configuration warning: %s", msg)
		}
	}

	go func() {
		sig := <-signals
		CmdLog.Info().Logf("received signal %s, shutting down", sig)
		if err := session.ShutdownSCGMS(); err != nil {
			CmdLog.Err().Logf("shutdown: %v", err)
		}
		close(done)
	}()

	<-done
}

func printWireEvent(w abi.WireEvent) {
	fmt.Printf("%+v\n", w)
}

// runOptimize parses -optimize's "index:name,index:name" target list and
// -solver's GUID, runs a single optimization pass, and writes the solved
// parameters back to -config (the supplemented post-solve write-back
// feature).
func runOptimize(rt *abi.Runtime) {
	cfg, err := chainconfig.LoadFile(*configFlag)
	if cfg == nil {
		fatal(resultcode.FromError(err), "loading configuration: %v", err)
	}
	if err != nil {
		CmdLog.Warning().Logf("configuration loaded with warnings: %v", err)
	}

	targets, err := parseTargets(*optimizeFlag)
	if err != nil {
		fatal(resultcode.InvalidArg, "-optimize: %v", err)
	}

	if *solverFlag == "" {
		fatal(resultcode.InvalidArg, "-solver is required with -optimize")
	}
	solverID, err := guid.Parse(*solverFlag)
	if err != nil {
		fatal(resultcode.InvalidArg, "-solver: %v", err)
	}

	errList := &capability.ErrorList{}
	progress, err := rt.OptimizeMultipleParameters(cfg, targets, solverID, int(*populationFlag), int(*generationsFlag), nil, func(f capability.Filter) error {
		CmdLog.Debug().Logf("filter built: %T", f)
		return nil
	}, errList)
	if err != nil {
		fatal(resultcode.FromError(err), "optimizing: %v", err)
	}
	for _, msg := range errList.Entries() {
		CmdLog.Warning().Logf("optimization warning: %s", msg)
	}

	CmdLog.Info().Logf("solved parameters: %v (fitness %v)", progress.BestSolution, progress.BestFitness)

	if err := cfg.SaveFile(*configFlag); err != nil {
		fatal(resultcode.FromError(err), "writing back %s: %v", *configFlag, err)
	}
}

func parseTargets(spec string) ([]optimizer.Target, error) {
	parts := strings.Split(spec, ",")
	targets := make([]optimizer.Target, 0, len(parts))
	for _, p := range parts {
		idx, name, ok := strings.Cut(p, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed target %q, want filterIndex:paramName", p)
		}
		n, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("malformed filter index in %q: %w", p, err)
		}
		targets = append(targets, optimizer.Target{FilterIndex: n, ParamName: name})
	}
	return targets, nil
}

func fatal(code resultcode.Code, format string, args ...any) {
	CmdLog.Err().Logf(format, args...)
	os.Exit(-int(code))
}
