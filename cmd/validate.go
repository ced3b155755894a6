package main

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

const validateTimeout = 30 * time.Second

// validate renders the generated chart with helm to catch template errors.
// A missing helm binary or a timeout is reported and tolerated; the run's
// outcome never depends on validation.
func (p *Pipeline) validate(ctx context.Context) {
	if _, err := exec.LookPath("helm"); err != nil {
		p.log.Warn("helm not found, skipping validation")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "helm", "template", "test-release", p.opts.OutputDir)
	out, err := cmd.CombinedOutput()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		p.log.Warn("helm validation timed out")
	case err != nil:
		p.log.Error("helm validation failed",
			zap.Error(err),
			zap.ByteString("output", out))
	default:
		p.log.Info("helm validation passed")
		if p.opts.Verbose {
			p.log.Debug("rendered output sample", zap.ByteString("head", head(out, 2000)))
		}
	}
}

func head(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
