// Package cmd wires the CLI commands around the exposure engine.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	awsclient "github.com/hotpatch-sec/creel/internal/aws"
	"github.com/hotpatch-sec/creel/internal/config"
)

// newLogger builds the process logger. Level comes from the config file,
// defaulting to info.
func newLogger(cfg *config.Config) hclog.Logger {
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "creel",
		Level:  hclog.LevelFromString(level),
		Output: os.Stderr,
	})
}

// setup loads the config file, applies flag precedence, and builds the
// service client shared by every command.
func setup(ctx context.Context, profile, region string) (*config.Config, *awsclient.ServiceClient, hclog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	profile, region = cfg.Merge(profile, region)

	log := newLogger(cfg)
	client, err := awsclient.NewServiceClient(ctx, profile, region, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing AWS client: %w", err)
	}
	return cfg, client, log, nil
}
