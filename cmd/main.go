package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/modelgate/internal/config"
	"github.com/okian/modelgate/internal/domain/gate"
	"github.com/okian/modelgate/pkg/logger"
	"github.com/urfave/cli/v2"
)

// Process exit codes.
const (
	exitPass       = 0
	exitRegression = 1
	exitFailure    = 2
)

const name = "modelgate"

var version = "v0.0.1-default"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line in args and returns the process exit code.
// Command results go to stdout, logs to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Initialize logging with defaults; Before re-applies the configured format.
	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging: "+err.Error())
		return exitFailure
	}
	defer func() {
		_ = logger.Sync()
	}()

	e := &env{stdout: stdout, stderr: stderr}
	err := newApp(e).RunContext(ctx, args)
	code := exitCode(err)
	if err != nil && code != exitRegression {
		logger.Get().Error(ctx, "modelgate failed", logger.Int("exit_code", code), logger.Error(err))
	}
	return code
}

// exitCode maps a run error onto the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitPass
	case errors.Is(err, gate.ErrRegression):
		return exitRegression
	default:
		return exitFailure
	}
}

// env carries what commands share: output streams and the loaded config.
type env struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
}

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   fmt.Sprintf("Path to a YAML config file (optional, falls back to $%s)", config.EnvConfigPath),
	}

	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level override: debug, info, warn, error",
	}

	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Log format override: text or json",
	}
)

func newApp(e *env) *cli.App {
	return &cli.App{
		Name:      name,
		Version:   version,
		Usage:     "Train a model and fail when its score regresses against the recorded history",
		Writer:    e.stdout,
		ErrWriter: e.stderr,
		Flags: []cli.Flag{
			configFlag,
			logLevelFlag,
			logFormatFlag,
		},
		Commands: []*cli.Command{
			evaluateCmd(e),
			historyCmd(e),
			generateCmd(e),
		},
		Before: e.setup,
		Action: func(c *cli.Context) error {
			return e.evaluate(c.Context, "")
		},
		// Errors are mapped to exit codes by run; never exit from inside the app.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// setup loads configuration and applies the logging settings.
func (e *env) setup(c *cli.Context) error {
	cfg, err := config.Load(c.Context, c.String(configFlag.Name))
	if err != nil {
		return err
	}
	if v := c.String(logLevelFlag.Name); v != "" {
		cfg.LogLevel = v
	}
	if v := c.String(logFormatFlag.Name); v != "" {
		cfg.LogFormat = v
	}
	e.cfg = cfg

	if err := logger.Init(logger.WithWriter(e.stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("%w: log_format: %w", config.ErrInvalidConfig, err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(c.Context, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}
