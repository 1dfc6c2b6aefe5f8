// Command smtbmc drives an external SMT solver over a solver-ready
// hardware module description to prove or refute safety properties within
// a bounded horizon, or, with -i, prove them unconditionally by temporal
// induction.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/offchainlabs/smtbmc/config"
	"github.com/offchainlabs/smtbmc/constraint"
	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/prover"
	"github.com/offchainlabs/smtbmc/solver"
	"github.com/offchainlabs/smtbmc/witness"
)

var log = logrus.WithField("prefix", "main")

// errNotVerified is returned by run when the driver completed but the
// property did not hold; the verdict has already been reported.
var errNotVerified = errors.New("verification failed")

func main() {
	setupLogging()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.WithError(err).Error("usage error")
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		if err != errNotVerified {
			log.WithError(err).Error("run failed")
		}
		os.Exit(1)
	}
}

// setupLogging mirrors the teacher's text-formatter setup, enabling color
// only when stderr is a real terminal (go-isatty), so piped/CI output stays
// plain.
func setupLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   isatty.IsTerminal(os.Stderr.Fd()),
		FullTimestamp: true,
	})
	logrus.SetOutput(os.Stderr)
}

func run(ctx context.Context, cfg *config.Config) error {
	input, err := os.Open(cfg.InputFile)
	if err != nil {
		return errors.Wrapf(err, "opening input file %q", cfg.InputFile)
	}
	defer input.Close()

	acc, err := modelinfo.ParseComments(input)
	if err != nil {
		return errors.Wrap(err, "parsing module metadata")
	}

	topModule := cfg.TopModule
	if topModule == "" {
		return errors.New("top module could not be determined; pass -m")
	}

	var db *constraint.Database
	if len(cfg.SMTCFiles) > 0 {
		db, err = constraint.ParseFiles(cfg.SMTCFiles, cfg.NumSteps)
		if err != nil {
			return errors.Wrap(err, "parsing constraint files")
		}
	} else {
		db = &constraint.Database{
			Asserts: make(map[constraint.StepKey][]constraint.Constraint),
			Assumes: make(map[constraint.StepKey][]constraint.Constraint),
		}
	}
	res := constraint.NewResolver(acc, topModule)

	sess, err := solver.NewProcessSession(ctx, cfg.SolverCmd, cfg.SolverArgs...)
	if err != nil {
		return errors.Wrap(err, "starting solver")
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.WithError(err).Error("error shutting down solver")
		}
	}()

	if err := replayInputDeclarations(ctx, sess, cfg.InputFile); err != nil {
		return errors.Wrap(err, "replaying input declarations to solver")
	}

	if cfg.Dump.HierDOT != "" {
		if err := dumpHierarchyDOT(acc, topModule, cfg.Dump.HierDOT); err != nil {
			return errors.Wrap(err, "dumping hierarchy graph")
		}
	}

	sink := buildSink(cfg, acc, topModule, sess)

	var result *prover.Result
	switch cfg.Mode {
	case config.ModeInduction:
		result, err = prover.RunInduction(ctx, cfg, sess, acc, db, res, sink)
	default:
		result, err = prover.RunBMC(ctx, cfg, sess, acc, db, res, sink)
	}
	if err != nil {
		return errors.Wrap(err, "running driver")
	}

	reportResult(cfg, result)
	if !result.Verified {
		return errNotVerified
	}
	return nil
}

// replayInputDeclarations streams the solver-ready input file to the
// solver verbatim, line by line; modelinfo.ParseComments has already
// extracted the sideband metadata from the same stream.
func replayInputDeclarations(ctx context.Context, sess *solver.ProcessSession, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := sess.Write(ctx, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func dumpHierarchyDOT(acc modelinfo.Accessor, topModule, path string) error {
	dot, err := modelinfo.RenderHierarchyDOT(acc, topModule)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(dot), 0o644)
}

func buildSink(cfg *config.Config, acc modelinfo.Accessor, topModule string, sess solver.Session) prover.WitnessSink {
	if !cfg.Dump.AnyEnabled() {
		return nil
	}
	return &lazySink{cfg: cfg, acc: acc, topModule: topModule, sess: sess}
}

// lazySink defers CollectTrace until WriteTrace is actually called, then
// fans the configured sinks out over the frozen result via MultiWriter.
type lazySink struct {
	cfg       *config.Config
	acc       modelinfo.Accessor
	topModule string
	sess      solver.Session
}

func (l *lazySink) WriteTrace(ctx context.Context, start, stop int, indexTag string) error {
	trace, err := witness.CollectTrace(ctx, l.sess, l.acc, l.topModule, start, stop)
	if err != nil {
		return err
	}
	var sinks []witness.Sink
	if l.cfg.Dump.VCD != "" {
		sinks = append(sinks, witness.NewVCDWriter(trace, l.acc, l.cfg.Dump.VCD))
	}
	if l.cfg.Dump.VlogTB != "" {
		sinks = append(sinks, witness.NewTestBenchWriter(trace, l.acc, l.cfg.Dump.VlogTB))
	}
	if l.cfg.Dump.SMTC != "" {
		sinks = append(sinks, witness.NewReplayConstraintWriter(trace, l.acc, l.cfg.Dump.SMTC))
	}
	return witness.NewMultiWriter(sinks...).WriteTrace(ctx, start, stop, indexTag)
}

func reportResult(cfg *config.Config, result *prover.Result) {
	fields := logrus.Fields{"mode": cfg.Mode.String(), "depth": result.Depth}
	if result.Verified {
		log.WithFields(fields).Info("verified")
		return
	}
	log.WithFields(fields).Warn("verification failed")
	for _, fo := range result.Failed {
		fmt.Fprintf(os.Stderr, "FAILED %s: %s\n", fo.Path, fo.SourceLoc)
	}
	for _, fv := range result.FreeValues {
		fmt.Fprintf(os.Stderr, "FREE %s %s = %s\n", fv.Path, fv.Tag, fv.Value)
	}
}
