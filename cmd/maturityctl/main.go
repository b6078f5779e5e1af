package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml] (default: json, or a table where available)",
	}

	programFlag = &cli.StringFlag{
		Name:  "program",
		Usage: "Assessment program (digital-maturity, innovation-conformity, governance, social-pact)",
	}
)

func main() {
	initLogging(false)

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "maturityctl",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Usage:   "Operator CLI for the maturity assessment backend",
		Flags: []cli.Flag{
			debugFlag,
			formatFlag,
		},
		Commands: []*cli.Command{
			scoreCmd,
			catalogCmd,
			resetPasswordCmd,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool(debugFlag.Name) {
				initLogging(true)
			}
			switch f := cmd.String(formatFlag.Name); f {
			case "", formatJSON, formatYAML, "yml":
			default:
				return ctx, fmt.Errorf("unsupported format %q", f)
			}
			return ctx, nil
		},
	}
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// encode writes v to w in the format selected on the root command.
func encode(cmd *cli.Command, w io.Writer, v any) error {
	switch cmd.String(formatFlag.Name) {
	case formatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
