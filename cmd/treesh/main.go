package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcelocantos/treesh/internal/audit"
	"github.com/marcelocantos/treesh/internal/builtin"
	"github.com/marcelocantos/treesh/internal/cli"
	"github.com/marcelocantos/treesh/internal/config"
	"github.com/marcelocantos/treesh/internal/executor"
	"github.com/marcelocantos/treesh/internal/logging"
)

var version = "dev"

func main() {
	// Spawned copies of treesh evaluate their task and exit here.
	if status, ok := executor.Child(); ok {
		os.Exit(status)
	}
	os.Exit(run(os.Args[1:]))
}

// app is the state shared by the sub-commands once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	log    *zap.Logger
	audit  *audit.Logger
	runID  string
	status int
}

func run(args []string) int {
	a := &app{}
	root := a.rootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "treesh: %v\n", err)
		if a.status == 0 {
			a.status = cli.StatusUsage
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return a.status
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "treesh",
		Short:         "Evaluate shell command trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default ~/.config/treesh/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.runCommand(),
		a.execCommand(),
		a.builtinsCommand(),
		a.auditCommand(),
		versionCommand(),
	)
	return root
}

func (a *app) setup() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}

	a.log, err = logging.New(a.cfg.Log.Level)
	if err != nil {
		return err
	}
	a.runID = uuid.NewString()

	if a.cfg.Audit.Enabled {
		a.audit, err = audit.NewLogger(a.cfg.Audit.Path)
		if err != nil {
			// Continue without audit logging.
			a.log.Warn("audit disabled", zap.Error(err))
			a.audit = nil
		}
	}
	return nil
}

func (a *app) context() context.Context {
	return logging.WithRun(context.Background(), a.log, a.runID)
}

func (a *app) executor() *executor.Executor {
	return executor.New(executor.Options{
		Logger:    a.log.With(zap.String("run", a.runID)),
		StatusVar: a.cfg.Shell.StatusVar,
		HomeVar:   a.cfg.Shell.HomeVar,
		LogLevel:  a.cfg.Log.Level,
	})
}

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run [file...]",
		Short: "Evaluate YAML or JSON tree documents (- reads stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.status = cli.RunFiles(a.context(), a.executor(), a.audit, args, os.Stdin, os.Stderr)
			return nil
		},
	}
}

func (a *app) execCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec -- <token>...",
		Short: "Build a tree from pre-split tokens and evaluate it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.status = cli.RunExec(a.context(), a.executor(), a.audit, args, os.Stderr)
			return nil
		},
	}
}

func (a *app) builtinsCommand() *cobra.Command {
	var placement string
	cmd := &cobra.Command{
		Use:   "builtins",
		Short: "List built-in commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.status = cli.RunList(builtin.Defaults(), os.Stdout, placement)
			return nil
		},
	}
	cmd.Flags().StringVar(&placement, "placement", "", "only list built-ins that run in-process or in a child")
	return cmd
}

func (a *app) auditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <verify|show [count]|run <run-id>>",
		Short: "Inspect the audit log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.status = cli.RunAudit(os.Stdout, a.cfg.Audit.Path, args)
			return nil
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("treesh %s\n", version)
		},
	}
}
