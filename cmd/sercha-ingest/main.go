package main

import (
	"context"
	"os"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-ingest/internal/app"
)

func main() {
	if err := cli.Execute(newServices); err != nil {
		os.Exit(1)
	}
}

// newServices loads the configuration and wires the application.
func newServices(ctx context.Context, configPath string) (*cli.Services, error) {
	cfg, err := file.Load(configPath)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Runner:    a.Runner,
		Scheduler: a.Scheduler,
		Cursors:   a.Cursors,
		Documents: a.Documents,
		Close:     a.Close,
	}, nil
}
