package main

import (
	"context"
	"fmt"

	"github.com/broady/commonizer"
)

type RunCmd struct {
	Out string `help:"Output directory (overrides out_dir)." short:"o" type:"path"`
}

func (c *RunCmd) Run(ctx context.Context, g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if c.Out != "" {
		cfg.OutDir = c.Out
	}

	res, err := commonizer.Run(ctx, cfg,
		commonizer.WithLogger(logger),
		commonizer.WithDir(g.Dir),
	)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d of %d groups commonized, report written to %s\n",
		res.Commonized(), len(res.Outcomes), cfg.OutDir)
	return nil
}
