package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ImVILLS/neocash/internal/appupdate"
	"github.com/ImVILLS/neocash/internal/core"
	"github.com/ImVILLS/neocash/internal/history"
	"github.com/ImVILLS/neocash/internal/repl"
	"github.com/ImVILLS/neocash/internal/repl/completion"
	"github.com/ImVILLS/neocash/internal/repl/config"
	"github.com/ImVILLS/neocash/internal/repl/console"
	"github.com/ImVILLS/neocash/internal/repl/editor"
	"github.com/ImVILLS/neocash/internal/repl/executor"
	"github.com/ImVILLS/neocash/internal/repl/menu"
	"github.com/ImVILLS/neocash/internal/styles"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/interp"
)

var BUILD_VERSION = "dev"

type options struct {
	version      bool
	checkUpdates bool
	verbose      bool
	noHistory    bool
	configPath   string
	command      string
}

func (o options) validate() error {
	if (o.checkUpdates || o.verbose) && !o.version {
		return errors.New("--check-updates and --verbose require --version")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	var exitStatus interp.ExitStatus
	if errors.As(err, &exitStatus) {
		os.Exit(int(exitStatus))
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR("ncash: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "ncash [script ...]",
		Short: "NeoCASH, an interactive POSIX shell",
		Long: `NeoCASH is an interactive POSIX shell with a configurable prompt,
persistent history and a full-screen completion menu.

  ncash                 start an interactive session
  ncash script.sh       run script files in order
  ncash -c "command"    run a single command
  command | ncash       run commands read from stdin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(*cobra.Command, []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.version {
				var checker releaseChecker
				if opts.checkUpdates {
					checker = appupdate.NewChecker(zap.NewNop())
				}
				showVersion(cmd.Context(), cmd.OutOrStdout(), BUILD_VERSION, opts.verbose, checker)
				return nil
			}
			return run(cmd.Context(), opts, args)
		},
	}

	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.BoolVarP(&opts.version, "version", "v", false, "print version information")
	flags.BoolVar(&opts.checkUpdates, "check-updates", false, "check the AUR for a newer release (with --version)")
	flags.BoolVarP(&opts.verbose, "verbose", "V", false, "print build details (with --version)")
	flags.BoolVarP(&opts.noHistory, "no-history", "n", false, "do not load or record command history")
	flags.StringVar(&opts.configPath, "config-path", "", "configuration file (default <user config dir>/neocash/ncashrc)")
	flags.StringVarP(&opts.command, "command", "c", "", "run a command and exit")

	return cmd
}

func run(ctx context.Context, opts options, args []string) error {
	configPath := opts.configPath
	if configPath == "" {
		configPath = core.DefaultConfigFile()
	}

	result, err := config.NewLoader(zap.NewNop()).LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := result.Config

	logger, err := initializeLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new ncash session --------", zap.Any("args", os.Args))

	for _, configErr := range result.Errors {
		logger.Warn("invalid configuration", zap.String("path", cfg.ConfigPath), zap.Error(configErr))
		fmt.Fprintln(os.Stderr, styles.ERROR(fmt.Sprintf("ncash: %s: %v", cfg.ConfigPath, configErr)))
	}

	var historyManager *history.HistoryManager
	if !opts.noHistory {
		historyManager, err = history.NewHistoryManager(cfg.HistoryPath(), logger)
		if err != nil {
			logger.Warn("history disabled", zap.Error(err))
			fmt.Fprintln(os.Stderr, styles.ERROR("ncash: history disabled: "+err.Error()))
			historyManager = nil
		} else {
			defer historyManager.Close()
		}
	}

	exec, err := initializeExecutor(cfg, historyManager, logger)
	if err != nil {
		return err
	}

	// ncash -c "echo hello"
	if opts.command != "" {
		return exitStatus(exec.RunScript(ctx, strings.NewReader(opts.command), "ncash"))
	}

	// ncash script.sh ...
	if len(args) > 0 {
		return runScripts(ctx, exec, args)
	}

	// echo "echo hello" | ncash
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return exitStatus(exec.RunScript(ctx, os.Stdin, "ncash"))
	}

	fmt.Fprintln(os.Stdout, styles.LOG("Config location: "+cfg.ConfigPath))
	return runInteractiveShell(ctx, cfg, exec, historyManager, logger)
}

type scriptRunner interface {
	RunScriptFile(ctx context.Context, path string) (int, error)
	Exited() bool
}

// runScripts runs each file in order, stopping at the first failure.
func runScripts(ctx context.Context, runner scriptRunner, paths []string) error {
	for _, path := range paths {
		code, err := runner.RunScriptFile(ctx, path)
		if err != nil || code != 0 || runner.Exited() {
			return exitStatus(code, err)
		}
	}
	return nil
}

// exitStatus turns a script result into the error main exits with.
func exitStatus(code int, err error) error {
	if err != nil {
		return err
	}
	if code != 0 {
		return interp.ExitStatus(code)
	}
	return nil
}

func runInteractiveShell(
	ctx context.Context,
	cfg *config.ShellConfig,
	exec *executor.REPLExecutor,
	historyManager *history.HistoryManager,
	logger *zap.Logger,
) error {
	// Ctrl-C belongs to the foreground command; the shell itself survives it.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-interrupts:
				logger.Debug("interrupt received")
			}
		}
	}()

	con := console.New(os.Stdin)

	var selector completion.Selector
	if cfg.Completion.Menu {
		selector = menu.New(&menu.TTY{
			Console: con,
			Fd:      int(os.Stdin.Fd()),
			Out:     os.Stdout,
		}, logger)
	}
	engine := completion.NewEngine(completion.NewFileSystemSource(logger), selector, exec.Pwd, logger)

	ed, err := editor.New(editor.Options{
		Input:        con.EditorInput(),
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Completer:    engine,
		HistoryLimit: cfg.HistorySize,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize line editor: %w", err)
	}
	defer ed.Close()

	r, err := repl.NewREPL(repl.Options{
		Config:   cfg,
		Logger:   logger,
		Editor:   ed,
		Executor: exec,
		History:  historyManager,
		Console:  con,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}

	if err := r.Run(ctx); err != nil {
		return err
	}
	if exec.Exited() {
		return exitStatus(r.LastExitCode(), nil)
	}
	return nil
}

func initializeLogger(level string) (*zap.Logger, error) {
	logLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// The terminal belongs to the prompt and the menu, so logs only go to file.
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	return loggerConfig.Build()
}

func initializeExecutor(cfg *config.ShellConfig, historyManager *history.HistoryManager, logger *zap.Logger) (*executor.REPLExecutor, error) {
	shellPath, err := os.Executable()
	if err != nil {
		shellPath = "ncash"
	}
	env := append(
		os.Environ(),
		fmt.Sprintf("SHELL=%s", shellPath),
		fmt.Sprintf("NCASH_BUILD_VERSION=%s", BUILD_VERSION),
	)

	var handlers []executor.ExecMiddleware
	if historyManager != nil {
		handlers = append(handlers, history.NewHistoryCommandHandler(historyManager))
	}

	exec, err := executor.NewREPLExecutor(logger, executor.Options{
		Editor:       cfg.Prompt.DefaultEditor,
		Env:          env,
		ExecHandlers: handlers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize executor: %w", err)
	}
	return exec, nil
}
