package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/unarx/internal/app/doctor"
	"github.com/slok/unarx/internal/app/unlock"
	"github.com/slok/unarx/internal/conventions"
	"github.com/slok/unarx/internal/extract/command"
	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/printer"
	"github.com/slok/unarx/internal/progress"
	storageio "github.com/slok/unarx/internal/storage/io"
)

type UnlockCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	archiveFile         string
	archiveDir          string
	wordlist            string
	batchSize           int
	timeoutMS           int
	parallel            int
	workDir             string
	format              string
	maxConsecutiveFatal int
	skipChecks          bool
}

// NewUnlockCommand returns the unlock command.
func NewUnlockCommand(rootCmd *RootCommand, app *kingpin.Application) *UnlockCommand {
	c := &UnlockCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("unlock", "Try the wordlist passwords on the archives and extract the ones that match.").Default()
	c.Cmd.Flag("archive-file", "Single archive to unlock.").Short('f').StringVar(&c.archiveFile)
	c.Cmd.Flag("archive-dir", "Directory scanned recursively for RAR, 7Z and ZIP archives.").Short('d').StringVar(&c.archiveDir)
	c.Cmd.Flag("wordlist", "Newline delimited password candidates file.").Short('w').Default(conventions.DefaultWordlistFile).StringVar(&c.wordlist)
	c.Cmd.Flag("batch-size", "Number of passwords tried between progress reports.").Short('b').Default(fmt.Sprint(conventions.DefaultBatchSize)).IntVar(&c.batchSize)
	c.Cmd.Flag("timeout", "Timeout of each attempt in milliseconds (0 means no timeout).").Short('t').Default("0").IntVar(&c.timeoutMS)
	c.Cmd.Flag("parallel", "Number of archives processed at the same time.").Short('p').Default(fmt.Sprint(runtime.NumCPU())).IntVar(&c.parallel)
	c.Cmd.Flag("work-dir", "Working directory used to resolve the relative paths.").StringVar(&c.workDir)
	c.Cmd.Flag("format", "Summary output format.").Default(FormatTable).EnumVar(&c.format, FormatTable, FormatJSON)
	c.Cmd.Flag("max-consecutive-fatal", "Abandon an archive after this many unexpected tool failures in a row (0 disables it).").Default("0").IntVar(&c.maxConsecutiveFatal)
	c.Cmd.Flag("skip-checks", "Skip the extraction tools preflight checks.").BoolVar(&c.skipChecks)

	return c
}

func (c UnlockCommand) Name() string { return c.Cmd.FullCommand() }

func (c UnlockCommand) validate() error {
	if c.archiveFile == "" && c.archiveDir == "" {
		return fmt.Errorf("--archive-file or --archive-dir is required")
	}
	if c.archiveFile != "" && c.archiveDir != "" {
		return fmt.Errorf("--archive-file and --archive-dir can't be used at the same time")
	}
	if c.batchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive")
	}
	if c.timeoutMS < 0 {
		return fmt.Errorf("--timeout can't be negative")
	}
	if c.parallel <= 0 {
		return fmt.Errorf("--parallel must be positive")
	}
	if c.maxConsecutiveFatal < 0 {
		return fmt.Errorf("--max-consecutive-fatal can't be negative")
	}
	return nil
}

func (c UnlockCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if err := c.validate(); err != nil {
		return err
	}

	if c.workDir != "" {
		if err := os.Chdir(c.workDir); err != nil {
			return fmt.Errorf("could not change to work dir: %w", err)
		}
		logger.Debugf("Working directory changed to %s", c.workDir)
	}

	tools, err := c.rootCmd.LoadTools(ctx)
	if err != nil {
		return err
	}

	if !c.skipChecks {
		if err := c.preflight(ctx, tools); err != nil {
			return err
		}
	}

	toolEnv, err := c.rootCmd.ToolEnv()
	if err != nil {
		return err
	}

	extractor, err := command.NewExtractor(command.ExtractorConfig{
		Tools:  tools,
		Env:    toolEnv,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create extractor: %w", err)
	}

	wordlistPath, err := filepath.Abs(c.wordlist)
	if err != nil {
		return fmt.Errorf("could not resolve wordlist path: %w", err)
	}
	candidates := storageio.NewWordlistRepository(os.DirFS(filepath.Dir(wordlistPath)))

	// Progress goes with the summary on table output and apart from it on JSON.
	var progressOut io.Writer = c.rootCmd.Stdout
	if c.format == FormatJSON {
		progressOut = c.rootCmd.Stderr
	}
	reporter, err := progress.NewTerminalReporter(progress.TerminalReporterConfig{
		Out:     progressOut,
		NoColor: c.rootCmd.NoColor,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create progress reporter: %w", err)
	}
	defer reporter.Close()

	svc, err := unlock.NewService(unlock.ServiceConfig{
		Candidates: candidates,
		Extractor:  extractor,
		Reporter:   reporter,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create unlock service: %w", err)
	}

	archiveFile, err := absPath(c.archiveFile)
	if err != nil {
		return err
	}
	archiveDir, err := absPath(c.archiveDir)
	if err != nil {
		return err
	}

	summary, err := svc.Run(ctx, unlock.Request{
		ArchiveFile:         archiveFile,
		ArchiveDir:          archiveDir,
		WordlistPath:        filepath.Base(wordlistPath),
		BatchSize:           c.batchSize,
		Timeout:             time.Duration(c.timeoutMS) * time.Millisecond,
		Concurrency:         c.parallel,
		MaxConsecutiveFatal: c.maxConsecutiveFatal,
	})
	if err != nil {
		return err
	}

	// Flush the pending progress lines before the summary.
	reporter.Close()

	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintSummary(*summary); err != nil {
		return fmt.Errorf("could not print summary: %w", err)
	}

	return nil
}

func (c UnlockCommand) preflight(ctx context.Context, tools model.ToolSet) error {
	svc, err := doctor.NewService(doctor.ServiceConfig{
		Tools:  tools,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create doctor service: %w", err)
	}

	results, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("could not run preflight checks: %w", err)
	}

	if model.HasErrors(results) {
		_ = printer.NewTablePrinter(c.rootCmd.Stderr).PrintChecks(results)
		return fmt.Errorf("%w: extraction tools are not available (use --skip-checks to ignore)", model.ErrSetup)
	}

	return nil
}

func absPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("could not resolve %q path: %w", p, err)
	}
	return abs, nil
}
