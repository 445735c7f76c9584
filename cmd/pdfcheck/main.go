package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	cfgpkg "github.com/local/pdfcheck/internal/config"
	"github.com/local/pdfcheck/internal/duplicates"
	logpkg "github.com/local/pdfcheck/internal/logger"
	"github.com/local/pdfcheck/internal/merge"
	"github.com/local/pdfcheck/internal/metrics"
	"github.com/local/pdfcheck/internal/pdfdoc"
	"github.com/local/pdfcheck/internal/report"
	"github.com/local/pdfcheck/internal/source"
)

const usage = `usage: pdfcheck <command> [flags] args

commands:
  quick <file>...                         page count of each file
  preview [-label L] [-pages N] <file>    first line of the leading pages
  content <file>                          page previews and identical text
  detailed <file>                         per-page lengths and pairwise comparison
  verify [-expect N] [-suppress form|none] [-strict] <file>
  merge [-verify] [-strict] <input.pdf>... <output.pdf>
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run wires configuration, logging and metrics around one command and returns
// the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := cfgpkg.FromEnv()

	if err := logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		RunID:        uuid.NewString(),
		Console:      stderr,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	}); err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
	}
	defer logpkg.Close()

	metrics.Init()
	if n := source.CleanupTemps(cfg.Source.TempMaxAge); n > 0 {
		log.Info().Int("removed", n).Msg("removed stale temp files")
	}

	a := &app{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
		opener: pdfdoc.Default(),
		resolver: source.New(source.Options{
			HTTPTimeout: cfg.Source.HTTPTimeout,
			Password:    cfg.Source.Password,
			S3: source.S3Options{
				Region:    cfg.Source.AWSRegion,
				AccessKey: cfg.Source.AWSAccessKey,
				SecretKey: cfg.Source.AWSSecretKey,
			},
		}),
	}
	code := a.dispatch(ctx, args)

	if path := cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to write metrics textfile")
		}
	}
	return code
}

type app struct {
	cfg      cfgpkg.Config
	stdout   io.Writer
	stderr   io.Writer
	opener   pdfdoc.Opener
	resolver *source.Resolver
}

func (a *app) runner() *report.Runner {
	return &report.Runner{
		Out:          a.stdout,
		Opener:       a.opener,
		Resolver:     a.resolver,
		Expected:     a.cfg.Check.ExpectedPages,
		PreviewPages: a.cfg.Check.PreviewPages,
	}
}

func (a *app) dispatch(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, usage)
		return 1
	}
	cmd, rest := args[0], args[1:]
	log.Debug().Str("command", cmd).Strs("args", rest).Msg("run started")

	switch cmd {
	case "quick":
		return a.quick(ctx, rest)
	case "preview":
		return a.preview(ctx, rest)
	case "content":
		return a.single(ctx, cmd, rest, a.runner().Content)
	case "detailed":
		return a.single(ctx, cmd, rest, a.runner().Detailed)
	case "verify":
		return a.verify(ctx, rest)
	case "merge":
		return a.merge(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
		return 0
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n\n%s", cmd, usage)
		return 1
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parse returns -1 when parsing succeeded and the exit code otherwise.
func parse(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	return -1
}

func (a *app) usageError(format string, args ...any) int {
	fmt.Fprintf(a.stderr, format+"\n", args...)
	return 1
}

func (a *app) quick(ctx context.Context, args []string) int {
	fs := a.flags("quick")
	if code := parse(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() == 0 {
		return a.usageError("quick: at least one file is required")
	}
	a.runner().Quick(ctx, fs.Args()...)
	return 0
}

func (a *app) preview(ctx context.Context, args []string) int {
	fs := a.flags("preview")
	label := fs.String("label", "", "label printed before the result (defaults to the file)")
	pages := fs.Int("pages", a.cfg.Check.PreviewPages, "number of leading pages to show")
	if code := parse(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		return a.usageError("preview: exactly one file is required")
	}
	r := a.runner()
	r.PreviewPages = *pages
	r.Preview(ctx, *label, fs.Arg(0))
	return 0
}

func (a *app) single(ctx context.Context, name string, args []string, fn func(context.Context, string)) int {
	fs := a.flags(name)
	if code := parse(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		return a.usageError("%s: exactly one file is required", name)
	}
	fn(ctx, fs.Arg(0))
	return 0
}

func (a *app) verify(ctx context.Context, args []string) int {
	fs := a.flags("verify")
	expect := fs.Int("expect", a.cfg.Check.ExpectedPages, "expected page count, 0 skips the check")
	suppress := fs.String("suppress", a.cfg.Check.Suppress, "duplicate suppression: form or none")
	strict := fs.Bool("strict", false, "exit non-zero when verification fails")
	if code := parse(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		return a.usageError("verify: exactly one file is required")
	}
	s, err := duplicates.ParseSuppressor(*suppress)
	if err != nil {
		return a.usageError("verify: %v", err)
	}
	r := a.runner()
	r.Expected = *expect
	r.Suppress = s
	if !r.Verify(ctx, fs.Arg(0)) && *strict {
		return 1
	}
	return 0
}

func (a *app) merge(ctx context.Context, args []string) int {
	fs := a.flags("merge")
	verify := fs.Bool("verify", false, "verify the output against the merged page count")
	strict := fs.Bool("strict", false, "exit non-zero when verification fails")
	if code := parse(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() < 2 {
		return a.usageError("merge: at least one input and the output file are required")
	}
	refs, output := fs.Args()[:fs.NArg()-1], fs.Arg(fs.NArg()-1)

	inputs := make([]string, 0, len(refs))
	for _, ref := range refs {
		local, err := a.resolver.Resolve(ctx, ref)
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %s: %v\n", ref, err)
			return 1
		}
		defer local.Cleanup()
		inputs = append(inputs, local.Path)
	}

	res, err := merge.Files(ctx, inputs, output)
	if err != nil {
		log.Error().Err(err).Msg("merge failed")
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	for i, in := range res.Inputs {
		fmt.Fprintf(a.stdout, "%s: %d pages\n", refs[i], in.Pages)
	}
	fmt.Fprintf(a.stdout, "Merged %d files into %s (%d pages)\n", len(res.Inputs), output, res.Total)

	if !*verify {
		return 0
	}
	fmt.Fprintln(a.stdout)
	r := a.runner()
	r.Resolver = nil
	r.Expected = res.Total
	s, err := duplicates.ParseSuppressor(a.cfg.Check.Suppress)
	if err != nil {
		return a.usageError("merge: %v", err)
	}
	r.Suppress = s
	if !r.Verify(ctx, output) && *strict {
		return 1
	}
	return 0
}
