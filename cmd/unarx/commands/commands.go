package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/unarx/internal/conventions"
	"github.com/slok/unarx/internal/extract/command"
	"github.com/slok/unarx/internal/log"
	"github.com/slok/unarx/internal/model"
	"github.com/slok/unarx/internal/printer"
	storageio "github.com/slok/unarx/internal/storage/io"
	utilsenv "github.com/slok/unarx/internal/utils/env"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	// FormatTable is the table output format.
	FormatTable = "table"
	// FormatJSON is the JSON output format.
	FormatJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug           bool
	NoLog           bool
	NoColor         bool
	LoggerType      string
	ToolsConfigPath string
	WinRARPath      string
	SevenZipPath    string
	ToolEnvSpecs    []string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger

	defaultToolsConfigPath string
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger and progress color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	c.defaultToolsConfigPath = conventions.ToolsConfigPath(homedir.HomeDir())
	app.Flag("tools-config", "Path to the extraction tools YAML configuration, ignored when the default one doesn't exist.").Default(c.defaultToolsConfigPath).StringVar(&c.ToolsConfigPath)
	app.Flag("winrar-path", "WinRAR (or unrar) binary used for RAR archives.").Envar(conventions.WinRARPathEnv).StringVar(&c.WinRARPath)
	app.Flag("sevenzip-path", "7-Zip binary used for the archives handled by 7-Zip.").Envar(conventions.SevenZipPathEnv).StringVar(&c.SevenZipPath)
	app.Flag("tool-env", "Environment variable set on the extraction tools, KEY=VALUE or KEY to inherit it (repeatable).").StringsVar(&c.ToolEnvSpecs)

	return c
}

// defaultToolEnv keeps the tool messages in a language the outcome classifier understands.
var defaultToolEnv = map[string]string{"LC_ALL": "C"}

// ToolEnv returns the environment variables set on the extraction tools.
func (c *RootCommand) ToolEnv() (map[string]string, error) {
	cliEnv, err := utilsenv.ParseSpecs(c.ToolEnvSpecs)
	if err != nil {
		return nil, fmt.Errorf("invalid --tool-env value: %w", err)
	}

	return utilsenv.MergeMaps(defaultToolEnv, cliEnv), nil
}

// LoadTools returns the platform default tools with the tools configuration file
// and the binary overrides applied.
func (c *RootCommand) LoadTools(ctx context.Context) (model.ToolSet, error) {
	tools := command.DefaultTools()

	if c.ToolsConfigPath != "" {
		absPath, err := filepath.Abs(c.ToolsConfigPath)
		if err != nil {
			return nil, fmt.Errorf("could not resolve tools config path: %w", err)
		}

		repo := storageio.NewToolsYAMLRepository(os.DirFS(filepath.Dir(absPath)))
		loaded, err := repo.GetTools(ctx, filepath.Base(absPath), tools)
		switch {
		case err == nil:
			c.Logger.Debugf("Tools configuration loaded from %s", absPath)
			tools = loaded
		case errors.Is(err, model.ErrNotFound) && c.ToolsConfigPath == c.defaultToolsConfigPath:
			c.Logger.Debugf("No tools configuration at %s, using defaults", absPath)
		default:
			return nil, fmt.Errorf("could not load tools config: %w", err)
		}
	}

	return command.WithBinaryOverrides(tools, c.WinRARPath, c.SevenZipPath), nil
}

func newPrinter(format string, w io.Writer) printer.Printer {
	if format == FormatJSON {
		return printer.NewJSONPrinter(w)
	}
	return printer.NewTablePrinter(w)
}
