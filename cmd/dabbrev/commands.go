package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/sjson"
	"github.com/urfave/cli/v3"

	"github.com/dshills/dabbrev/internal/app"
	"github.com/dshills/dabbrev/internal/dispatcher/handler"
	cursorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/cursor"
	editorhandler "github.com/dshills/dabbrev/internal/dispatcher/handlers/editor"
	"github.com/dshills/dabbrev/internal/dispatcher/handlers/emacs"
	"github.com/dshills/dabbrev/internal/plugin/lua"
	"github.com/dshills/dabbrev/internal/renderer/backend"
)

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "dabbrev",
		Usage:   "Dynamic word expansion from the text before the cursor",
		Version: fmt.Sprintf("%s (%s, %s)", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file (.toml, .yaml or .yml)",
				Sources: cli.EnvVars("DABBREV_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("DABBREV_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "expand",
				Usage:     "Expand the word prefix at a position and print the result",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "at",
						Usage:    "Cursor position as LINE:COL, 1-based, COL in bytes",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "times",
						Value: 1,
						Usage: "Number of consecutive triggers; later triggers cycle",
					},
					&cli.BoolFlag{
						Name:  "write",
						Usage: "Save the file instead of printing its text",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the outcome as JSON",
					},
					&cli.BoolFlag{
						Name:  "metrics",
						Usage: "Print metrics in Prometheus format to stderr",
					},
				},
				Action: runExpand,
			},
			{
				Name:      "script",
				Usage:     "Run a Lua script against a file",
				ArgsUsage: "SCRIPT.lua [FILE]",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Value: lua.DefaultExecutionTimeout,
						Usage: "Maximum script run time",
					},
					&cli.BoolFlag{
						Name:  "write",
						Usage: "Save the file after the script ran",
					},
					&cli.BoolFlag{
						Name:  "print",
						Usage: "Print the final text",
					},
				},
				Action: runScript,
			},
			{
				Name:      "edit",
				Usage:     "Open files in the terminal editor",
				ArgsUsage: "[FILE...]",
				Action:    runEdit,
			},
		},
	}
}

func newApp(ctx context.Context, cmd *cli.Command, opts app.Options) (*app.Application, error) {
	opts.ConfigPath = cmd.String("config")
	opts.LogLevel = cmd.String("log-level")
	if opts.LogOutput == nil {
		opts.LogOutput = errWriter(cmd)
	}
	return app.New(ctx, opts)
}

func runExpand(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.WithHint(errors.New("expand needs exactly one FILE"), "usage: dabbrev expand --at LINE:COL FILE")
	}
	line, col, err := parsePosition(cmd.String("at"))
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd, app.Options{Files: []string{cmd.Args().First()}})
	if err != nil {
		return err
	}
	defer a.Shutdown()

	res := a.Dispatch(ctx, handler.NewAction(cursorhandler.ActionMoveTo).
		WithArg(cursorhandler.ArgLine, line).
		WithArg(cursorhandler.ArgCol, col))
	if res.IsError() {
		return res.Error
	}

	expand := handler.NewAction(emacs.ActionDabbrevExpand)
	expand.Count = max(int(cmd.Int("times")), 1)
	res = a.Dispatch(ctx, expand)
	if res.IsError() {
		return res.Error
	}

	if cmd.Bool("metrics") {
		a.WriteMetrics(errWriter(cmd))
	}

	ed := a.Workspace().Active()
	out := outWriter(cmd)
	if cmd.Bool("write") && res.IsOK() {
		if save := a.Dispatch(ctx, handler.NewAction(editorhandler.ActionSave)); save.IsError() {
			return save.Error
		}
	}

	if cmd.Bool("json") {
		doc, err := expandJSON(res, ed.Text())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, doc)
		return err
	}
	if msg := res.Message; msg != "" {
		fmt.Fprintln(errWriter(cmd), msg)
	}
	if !cmd.Bool("write") {
		_, err = io.WriteString(out, ed.Text())
	}
	return err
}

// expandJSON renders an expansion result and the resulting text.
func expandJSON(res handler.Result, text string) (string, error) {
	doc := "{}"
	var err error
	set := func(path string, value any) {
		if err == nil {
			doc, err = sjson.Set(doc, path, value)
		}
	}
	set("status", res.Status.String())
	set("outcome", res.GetDataString(emacs.DataOutcome))
	set("replacement", res.GetDataString(emacs.DataReplacement))
	set("index", res.GetDataInt(emacs.DataIndex))
	set("candidates", res.GetDataInt(emacs.DataCandidates))
	if res.Message != "" {
		set("message", res.Message)
	}
	set("text", text)
	return doc, errors.Wrap(err, "encode result")
}

func runScript(ctx context.Context, cmd *cli.Command) error {
	if n := cmd.Args().Len(); n < 1 || n > 2 {
		return errors.WithHint(errors.New("script needs SCRIPT.lua and an optional FILE"), "usage: dabbrev script SCRIPT.lua [FILE]")
	}
	script := cmd.Args().Get(0)

	opts := app.Options{}
	if file := cmd.Args().Get(1); file != "" {
		opts.Files = []string{file}
	}
	a, err := newApp(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer a.Shutdown()
	if a.Workspace().Active() == nil {
		a.OpenText("")
	}

	runner := a.NewScriptRunner(
		lua.WithExecutionTimeout(cmd.Duration("timeout")),
		lua.WithOutput(outWriter(cmd)),
	)
	defer runner.Close()

	if err := runner.RunFile(ctx, script); err != nil {
		return errors.Wrapf(err, "run %s", script)
	}

	if cmd.Bool("write") {
		if save := a.Dispatch(ctx, handler.NewAction(editorhandler.ActionSave)); save.IsError() {
			return save.Error
		}
	}
	if cmd.Bool("print") {
		_, err = io.WriteString(outWriter(cmd), a.Workspace().Active().Text())
	}
	return err
}

func runEdit(ctx context.Context, cmd *cli.Command) error {
	term, err := backend.NewTerminal()
	if err != nil {
		return errors.Wrap(err, "create terminal")
	}

	a, err := newApp(ctx, cmd, app.Options{
		Files:       cmd.Args().Slice(),
		WatchConfig: true,
		Backend:     term,
		// The terminal owns stderr while the editor runs.
		LogOutput: io.Discard,
	})
	if err != nil {
		return err
	}
	defer a.Shutdown()

	return a.Run(ctx)
}

// parsePosition parses a 1-based LINE:COL into 0-based line and column.
func parsePosition(s string) (line, col int, err error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		c = "1"
	}
	line, err = strconv.Atoi(strings.TrimSpace(l))
	if err != nil || line < 1 {
		return 0, 0, errors.WithHint(errors.Newf("invalid line in %q", s), "positions are LINE:COL starting at 1")
	}
	col, err = strconv.Atoi(strings.TrimSpace(c))
	if err != nil || col < 1 {
		return 0, 0, errors.WithHint(errors.Newf("invalid column in %q", s), "positions are LINE:COL starting at 1")
	}
	return line - 1, col - 1, nil
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
