package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/ai"
	"github.com/digimosa/doc-redact/internal/config"
	"github.com/digimosa/doc-redact/internal/logging"
	"github.com/digimosa/doc-redact/internal/pipeline"
	"github.com/digimosa/doc-redact/internal/whitelist"
)

// newPipeline loads the whitelist and builds the detection pipeline. When
// AI verification is enabled but Ollama does not answer, the pipeline runs
// without it.
func newPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, *whitelist.Whitelist, error) {
	wl, err := whitelist.New(cfg.WhitelistPath)
	if err != nil {
		return nil, nil, err
	}

	cfg = checkAI(ctx, cfg)

	p, err := pipeline.NewFromConfig(cfg, wl)
	if err != nil {
		return nil, nil, fmt.Errorf("build pipeline: %w", err)
	}
	logging.Component("main").WithFields(logrus.Fields{
		"threshold": p.Threshold(),
		"whitelist": wl.Len(),
		"ai":        !cfg.DisableAI,
	}).Debug("pipeline ready")
	return p, wl, nil
}

// checkAI returns cfg unchanged, or a copy with AI disabled when verification
// is enabled but Ollama does not answer.
func checkAI(ctx context.Context, cfg *config.Config) *config.Config {
	if cfg.DisableAI {
		return cfg
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ai.NewClient(cfg.OllamaURL, cfg.OllamaModel).Ping(pingCtx); err != nil {
		logging.Component("main").WithField("error", err).Warn("Ollama is not reachable, continuing without contextual verification")
		withoutAI := *cfg
		withoutAI.DisableAI = true
		return &withoutAI
	}
	return cfg
}
