package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"maturity-assessment-backend/internal/catalog"
	"maturity-assessment-backend/internal/report"
	"maturity-assessment-backend/internal/scoring"
)

var (
	answersFlag = &cli.StringFlag{
		Name:     "answers",
		Usage:    "Path to a JSON or YAML answer set, - for stdin",
		Required: true,
	}

	markdownFlag = &cli.BoolFlag{
		Name:  "markdown",
		Usage: "Print the narrative report instead of the scores",
	}

	orgNameFlag = &cli.StringFlag{
		Name:  "org-name",
		Usage: "Organization name used in the report",
	}

	orgTypeFlag = &cli.StringFlag{
		Name:  "org-type",
		Usage: "Organization type used in the report (company, public_admin)",
		Value: catalog.TargetCompany,
	}

	scoreCmd = &cli.Command{
		Name:  "score",
		Usage: "Scores an answer set against an embedded catalog",
		Flags: []cli.Flag{
			programFlag,
			answersFlag,
			markdownFlag,
			orgNameFlag,
			orgTypeFlag,
		},
		Action: cmdScore,
	}
)

func cmdScore(_ context.Context, cmd *cli.Command) error {
	p, err := catalog.ParseProgram(cmd.String(programFlag.Name))
	if err != nil {
		return err
	}
	c, err := catalog.Load(p)
	if err != nil {
		return err
	}
	answers, err := readAnswers(cmd.String(answersFlag.Name))
	if err != nil {
		return err
	}
	slog.Debug("scoring", "program", p, "answers", len(answers.Answers), "questions", len(c.Questions))

	result := scoring.Analyze(answers.Answers, c.EngineQuestions())
	if !cmd.Bool(markdownFlag.Name) {
		return encode(cmd, writer(cmd), result)
	}

	md, err := report.Markdown(report.Input{
		Program: p,
		Organization: report.Organization{
			Name: cmd.String(orgNameFlag.Name),
			Type: cmd.String(orgTypeFlag.Name),
		},
		Result:     result,
		Categories: c.Categories,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(writer(cmd), md)
	return err
}

// readAnswers decodes an answer set. YAML is a superset of JSON, so one
// decoder handles both.
func readAnswers(path string) (scoring.AnswerSet, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return scoring.AnswerSet{}, fmt.Errorf("reading answers: %w", err)
	}

	var set scoring.AnswerSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return scoring.AnswerSet{}, fmt.Errorf("decoding answers: %w", err)
	}
	return set, nil
}
