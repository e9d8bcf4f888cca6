package commonizer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/commonizer"
	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/config"
	"github.com/broady/commonizer/provider"
	"github.com/broady/commonizer/report"
	"github.com/broady/commonizer/sink"
)

func manifestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := filepath.Join("provider", "testdata", "manifests")
	cfg, err := config.Load("", nil, []string{
		"platforms.0.name=linux_x64",
		"platforms.0.manifest=" + filepath.Join(dir, "linux.yaml"),
		"platforms.1.name=macos_arm64",
		"platforms.1.manifest=" + filepath.Join(dir, "macos.yaml"),
		"standard_namespaces=acme/shared",
		"out_dir=" + t.TempDir(),
	})
	require.NoError(t, err)
	return cfg
}

func TestRun(t *testing.T) {
	cfg := manifestConfig(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	out := sink.NewMemorySink()

	res, err := commonizer.Run(context.Background(), cfg,
		commonizer.WithLogger(logger),
		commonizer.WithSink(out),
	)
	require.NoError(t, err)

	strategies := make(map[string]cir.Strategy)
	for _, o := range res.Outcomes {
		strategies[o.ID.String()] = o.Strategy
	}
	assert.Equal(t, map[string]cir.Strategy{
		"acme/io.Conn":       cir.StrategyShortCircuit,
		"acme/io.Coords":     cir.StrategyShortCircuit,
		"acme/io.Poller":     cir.StrategyExpectClass,
		"acme/io.Ref":        cir.StrategyExpectClass,
		"acme/io.Same":       cir.StrategyShortCircuit,
		"acme/shared.Handle": cir.StrategyShortCircuit,
	}, strategies)
	assert.Equal(t, 6, res.Commonized())

	reasons := make(map[string]string)
	for _, u := range res.Unmatched {
		reasons[u.ID.String()] = u.Reason
	}
	assert.Equal(t, "no commonizer for class declarations", reasons["acme/shared.Box"])
	assert.Equal(t, "not declared on macos_arm64", reasons["acme/io.EpollPoller"])
	assert.Len(t, reasons, 6)

	entry, ok := res.Cache.Lookup(cir.ClassifierID{Package: "acme/io", Name: "Poller"})
	require.True(t, ok)
	assert.Equal(t, cir.StrategyExpectClass, entry.Strategy)

	var doc struct {
		Platforms []string `json:"platforms"`
	}
	require.NoError(t, json.Unmarshal(out.Get(report.JSONFile), &doc))
	assert.Equal(t, []string{"linux_x64", "macos_arm64"}, doc.Platforms)
	assert.Contains(t, string(out.Get(report.TextFile)), "commonized 6 of 6 groups")

	assert.Contains(t, logs.String(), `"msg":"group commonized"`)
	assert.Contains(t, logs.String(), `"msg":"commonization finished"`)
}

func TestRunWritesOutDir(t *testing.T) {
	cfg := manifestConfig(t)
	_, err := commonizer.Run(context.Background(), cfg,
		commonizer.WithLogger(slog.New(slog.DiscardHandler)),
	)
	require.NoError(t, err)

	for _, name := range []string{report.JSONFile, report.TextFile} {
		_, err := os.Stat(filepath.Join(cfg.OutDir, name))
		assert.NoError(t, err, name)
	}
}

type failingProvider struct{}

func (failingProvider) Load(context.Context, provider.Platform) (*cir.Module, error) {
	return nil, os.ErrNotExist
}

func TestRunProviderError(t *testing.T) {
	_, err := commonizer.Run(context.Background(), manifestConfig(t),
		commonizer.WithProvider(failingProvider{}),
		commonizer.WithSink(sink.NewMemorySink()),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to load platforms")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := commonizer.Run(ctx, manifestConfig(t), commonizer.WithSink(sink.NewMemorySink()))
	assert.ErrorIs(t, err, context.Canceled)
}
