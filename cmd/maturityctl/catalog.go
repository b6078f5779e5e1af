package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"maturity-assessment-backend/internal/catalog"
)

var catalogCmd = &cli.Command{
	Name:   "catalog",
	Usage:  "Lists the programs, or the questions of one program",
	Flags:  []cli.Flag{programFlag},
	Action: cmdCatalog,
}

type programSummary struct {
	Program    catalog.Program `json:"program" yaml:"program"`
	Title      string          `json:"title" yaml:"title"`
	Categories int             `json:"categories" yaml:"categories"`
	Questions  int             `json:"questions" yaml:"questions"`
}

func cmdCatalog(_ context.Context, cmd *cli.Command) error {
	w := writer(cmd)
	if name := cmd.String(programFlag.Name); name != "" {
		p, err := catalog.ParseProgram(name)
		if err != nil {
			return err
		}
		c, err := catalog.Load(p)
		if err != nil {
			return err
		}
		return encode(cmd, w, c)
	}

	var list []programSummary
	for _, p := range catalog.Programs() {
		c, err := catalog.Load(p)
		if err != nil {
			return err
		}
		list = append(list, programSummary{
			Program:    p,
			Title:      c.Title,
			Categories: len(c.Categories),
			Questions:  len(c.Questions),
		})
	}
	if cmd.String(formatFlag.Name) != "" {
		return encode(cmd, w, list)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROGRAM\tTITLE\tCATEGORIES\tQUESTIONS")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", s.Program, s.Title, s.Categories, s.Questions)
	}
	return tw.Flush()
}
