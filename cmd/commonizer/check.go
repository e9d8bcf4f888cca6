package main

import (
	"context"
	"fmt"
	"os"

	"github.com/broady/commonizer"
	"github.com/broady/commonizer/report"
	"github.com/broady/commonizer/sink"
)

type CheckCmd struct {
	Strict bool `help:"Fail when a module has validation errors or loader warnings."`
}

func (c *CheckCmd) Run(ctx context.Context, g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}

	out := sink.NewMemorySink()
	res, err := commonizer.Run(ctx, cfg,
		commonizer.WithLogger(logger),
		commonizer.WithDir(g.Dir),
		commonizer.WithSink(out),
	)
	if err != nil {
		return err
	}
	os.Stdout.Write(out.Get(report.TextFile))

	failed := 0
	for _, o := range res.Outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d groups failed", failed)
	}
	if c.Strict {
		problems := 0
		for _, m := range res.Modules {
			problems += len(m.Validate()) + len(m.Warnings)
		}
		if problems > 0 {
			return fmt.Errorf("%d validation problems", problems)
		}
	}
	return nil
}
