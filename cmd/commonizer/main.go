package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/commonizer/config"
	"github.com/broady/commonizer/internal/logging"
)

type CLI struct {
	Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Run     RunCmd     `cmd:"" help:"Commonize the configured platforms and write the report."`
	Check   CheckCmd   `cmd:"" help:"Commonize without writing files and print the summary."`
}

// Globals are the flags shared by every command.
type Globals struct {
	Config  string   `help:"Path to the TOML configuration file." short:"c" type:"path" default:"commonizer.toml"`
	Set     []string `help:"Override a configuration key (key=value)." placeholder:"KEY=VALUE"`
	EnvFile []string `help:"Load environment variables from these files." name:"env-file" default:".env"`
	Dir     string   `help:"Directory Go packages are resolved from." type:"path"`
}

// load reads the configuration and builds the logger it asks for.
func (g *Globals) load() (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(g.EnvFile...); err != nil {
		return nil, nil, err
	}
	path := g.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Everything may come from the environment and --set.
		path = ""
	}
	cfg, err := config.Load(path, os.Environ(), g.Set)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	os.Stdout.WriteString(Version() + "\n")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("commonizer"),
		kong.Description("Find the declarations shared by several platform builds and synthesize their common form."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
