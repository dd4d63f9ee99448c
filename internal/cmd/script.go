package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/stagehand/internal/app"
	"github.com/Iron-Ham/stagehand/internal/config"
	"github.com/Iron-Ham/stagehand/internal/script"
)

var scriptCmd = &cobra.Command{
	Use:   "script [file]",
	Short: "Replay a request script without a terminal",
	Long: `Boot the orchestration core headlessly, run a request script and print
the trace of every command and the events it caused.

Script lines come from the file argument ("-" reads stdin) followed by
any --exec lines. Boot runs until idle before the first line.

Examples:
  # Load the game scene and wait for it
  stagehand script -e 'load Game' -e idle

  # Trace only scene events from a file
  stagehand script --trace 'scene.*' transitions.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

var (
	scriptExec      []string
	scriptTrace     []string
	scriptIdleTicks int
	scriptMetrics   bool
)

func init() {
	scriptCmd.Flags().StringArrayVarP(&scriptExec, "exec", "e", nil, "Script line to run (repeatable)")
	scriptCmd.Flags().StringSliceVar(&scriptTrace, "trace", nil, "Event type globs to print (default: trace.patterns from config)")
	scriptCmd.Flags().IntVar(&scriptIdleTicks, "idle-ticks", script.DefaultIdleTicks, "Tick limit for boot and each idle command")
	scriptCmd.Flags().BoolVar(&scriptMetrics, "metrics", false, "Print metrics in Prometheus text format when done")
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	parser := script.Parser{Scenes: cfg.SceneNames()}
	cmds, err := readScript(cmd.InOrStdin(), parser, args, scriptExec)
	if err != nil {
		return err
	}
	if len(cmds) == 0 {
		return fmt.Errorf("nothing to run: pass a script file or --exec lines")
	}

	logger := createLogger(cfg)
	defer func() { _ = logger.Close() }()

	opts, err := appOptions(cfg, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}
	opts.Metrics = opts.Metrics || scriptMetrics
	a := app.New(opts)

	patterns := cfg.Trace.Patterns
	if len(scriptTrace) > 0 {
		patterns = scriptTrace
	}
	out := cmd.OutOrStdout()
	runner, err := script.NewRunner(a, out, patterns, logger)
	if err != nil {
		return err
	}
	runner.SetIdleTicks(scriptIdleTicks)

	// Trace boot with the same patterns as the script itself.
	fmt.Fprintln(out, "> boot")
	runner.Tracer().Start()
	a.Start()
	defer a.Shutdown()
	if _, err := a.RunUntilIdle(scriptIdleTicks); err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := runner.Run(ctx, cmds); err != nil {
		return err
	}

	if m := a.Metrics(); m != nil && scriptMetrics {
		fmt.Fprintln(out)
		return m.WriteText(out)
	}
	return nil
}

// readScript parses the file argument, if any, followed by the exec lines.
func readScript(stdin io.Reader, parser script.Parser, args, exec []string) ([]script.Command, error) {
	var sources []string
	if len(args) == 1 {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read script: %w", err)
		}
		sources = append(sources, strings.TrimRight(string(data), "\n"))
	}
	sources = append(sources, exec...)

	return parser.Parse(strings.NewReader(strings.Join(sources, "\n")))
}
