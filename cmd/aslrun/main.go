package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/msageha/aslrun/internal/compile"
	"github.com/msageha/aslrun/internal/fsl"
	"github.com/msageha/aslrun/internal/lock"
	"github.com/msageha/aslrun/internal/model"
	"github.com/msageha/aslrun/internal/nifti"
	"github.com/msageha/aslrun/internal/preview"
	"github.com/msageha/aslrun/internal/report"
	"github.com/msageha/aslrun/internal/session"
	"github.com/msageha/aslrun/internal/validate"
	"github.com/msageha/aslrun/internal/watch"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "check":
		runCheck(os.Args[2:])
	case "plan":
		runPlan(os.Args[2:])
	case "preview":
		runPreview(os.Args[2:])
	case "run":
		runRun(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "version":
		fmt.Printf("aslrun %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runInit(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: aslrun init <session.yaml> [--labelling pasl|casl]")
		os.Exit(1)
	}
	path := args[0]
	labelling := model.LabellingCASL

	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--labelling":
			if i+1 >= len(rest) {
				fmt.Fprintln(os.Stderr, "--labelling requires a value")
				os.Exit(1)
			}
			i++
			labelling = model.Labelling(rest[i])
			if !labelling.Valid() {
				fmt.Fprintf(os.Stderr, "invalid --labelling value: %s (want pasl or casl)\n", rest[i])
				os.Exit(1)
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\nusage: aslrun init <session.yaml> [--labelling pasl|casl]\n", rest[i])
			os.Exit(1)
		}
	}

	if err := session.WriteTemplate(path, labelling); err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s session template to %s\n", labelling, path)
}

func runCheck(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: aslrun check <session.yaml> [--enablement]")
		os.Exit(1)
	}
	showEnablement := false
	for _, a := range args[1:] {
		switch a {
		case "--enablement":
			showEnablement = true
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\nusage: aslrun check <session.yaml> [--enablement]\n", a)
			os.Exit(1)
		}
	}

	s, err := session.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		os.Exit(1)
	}
	acc, err := newValidator().Check(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ready to go: data order %s, %d repeats\n", acc.Spec, acc.NRepeats)
	if showEnablement {
		printEnablement(s)
	}
}

func runPlan(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: aslrun plan <session.yaml>")
		os.Exit(1)
	}
	seq, err := compilePlan(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "plan: %v\n", err)
		os.Exit(1)
	}
	for _, desc := range seq {
		fmt.Println(desc.String())
	}
}

func runPreview(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: aslrun preview <session.yaml> [--pwi] [--out <image>]")
		os.Exit(1)
	}
	pwi := false
	out := ""
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--pwi":
			pwi = true
		case "--out":
			if i+1 >= len(rest) {
				fmt.Fprintln(os.Stderr, "--out requires a value")
				os.Exit(1)
			}
			i++
			out = rest[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\nusage: aslrun preview <session.yaml> [--pwi] [--out <image>]\n", rest[i])
			os.Exit(1)
		}
	}

	s, err := session.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "preview: %v\n", err)
		os.Exit(1)
	}
	acc, err := newValidator().Check(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preview: %v\n", err)
		os.Exit(1)
	}

	if !pwi {
		fmt.Print(preview.Layout(acc))
		return
	}

	exe := &fsl.Executor{Out: os.Stdout, Logger: newLogger()}
	shape, err := preview.PWI(signalContext(), exe, nifti.Loader{}, acc, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preview: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Perfusion-weighted image shape: %v\n", shape)
	if out != "" {
		fmt.Printf("Wrote %s\n", out)
	}
}

func runRun(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: aslrun run <session.yaml> [--keep-going]")
		os.Exit(1)
	}
	keepGoing := false
	for _, a := range args[1:] {
		switch a {
		case "--keep-going":
			keepGoing = true
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\nusage: aslrun run <session.yaml> [--keep-going]\n", a)
			os.Exit(1)
		}
	}

	s, err := session.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}
	c := compile.New(newValidator())
	seq, acc, err := c.Compile(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}

	outDir := acc.Session.Analysis.OutDir
	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "run: create output directory: %v\n", err)
		os.Exit(1)
	}
	fl := lock.ForOutputDir(outDir)
	if err := fl.TryLock(); err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}
	defer fl.Unlock()

	exe := &fsl.Executor{Out: os.Stdout, Logger: newLogger(), KeepGoing: keepGoing}
	started := time.Now()
	results, runErr := exe.Run(signalContext(), seq)
	finished := time.Now()

	rep := report.New(started, finished, results, runErr == nil)
	if err := report.Write(outDir, rep); err != nil {
		fmt.Fprintf(os.Stderr, "run: write report: %v\n", err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", runErr)
		os.Exit(1)
	}
}

func runWatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: aslrun watch <session.yaml>")
		os.Exit(1)
	}
	path := args[0]

	w := &watch.Watcher{
		Path:   path,
		Out:    os.Stdout,
		Logger: newLogger(),
		Recompile: func(p string) error {
			seq, err := compilePlan(p)
			if err != nil {
				return err
			}
			fmt.Println("Ready to go:")
			for _, desc := range seq {
				fmt.Println("  " + desc.String())
			}
			return nil
		},
	}
	if err := w.Run(signalContext()); err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
}

func compilePlan(path string) (model.CommandSequence, error) {
	s, err := session.Load(path)
	if err != nil {
		return nil, err
	}
	seq, _, err := compile.New(newValidator()).Compile(s)
	return seq, err
}

func newValidator() *validate.Validator {
	return validate.New(nifti.Loader{})
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func printEnablement(s *model.Session) {
	e := preview.DeriveEnablement(s)
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		state := "enabled"
		if !e[f] {
			state = "ignored"
		}
		fmt.Printf("  %-45s %s\n", f, state)
	}
}

func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `aslrun %s — oxford_asl pipeline configurator

Usage: aslrun <command> [options]

Session:
  init <file> [--labelling pasl|casl]   Write a session template
  check <file> [--enablement]           Validate a session file
  plan <file>                           Print the command sequence
  preview <file> [--pwi] [--out <img>]  Show the data order, or generate
                                        a perfusion-weighted image

Execution:
  run <file> [--keep-going]             Execute the command sequence
  watch <file>                          Revalidate on every file change

Utilities:
  version           Show version
  help              Show this help

`, version)
}
