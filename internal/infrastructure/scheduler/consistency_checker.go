// Package scheduler runs the background jobs of the backend.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	inventoryapp "github.com/ferreteria/backend/internal/application/inventory"
	"go.uber.org/zap"
)

// StockVerifier compares cached stock with the move history
type StockVerifier interface {
	VerifyConsistency(ctx context.Context) ([]inventoryapp.Discrepancy, error)
}

// ConsistencyCheckConfig holds configuration for the periodic stock check
type ConsistencyCheckConfig struct {
	Enabled    bool
	Interval   time.Duration
	Timeout    time.Duration
	RunOnStart bool
}

// DefaultConsistencyCheckConfig returns default configuration
func DefaultConsistencyCheckConfig() ConsistencyCheckConfig {
	return ConsistencyCheckConfig{
		Enabled:    true,
		Interval:   time.Hour,
		Timeout:    time.Minute,
		RunOnStart: true,
	}
}

func (c ConsistencyCheckConfig) validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// CheckResult is the outcome of the last consistency check
type CheckResult struct {
	RanAt         time.Time
	Duration      time.Duration
	Discrepancies int
	Err           error
}

// ConsistencyChecker periodically verifies that every product's on-hand
// quantity equals the sum of its stock moves. It only reports; nothing is
// corrected automatically.
type ConsistencyChecker struct {
	config   ConsistencyCheckConfig
	verifier StockVerifier
	logger   *zap.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{} // closed when the current loop exits
	isRunning bool
	checking  bool
	last      *CheckResult
}

// NewConsistencyChecker creates a checker; it does nothing until Start
func NewConsistencyChecker(config ConsistencyCheckConfig, verifier StockVerifier, logger *zap.Logger) (*ConsistencyChecker, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &ConsistencyChecker{
		config:   config,
		verifier: verifier,
		logger:   logger,
	}, nil
}

// Start launches the check loop. Calling Start twice is a no-op.
func (c *ConsistencyChecker) Start(ctx context.Context) error {
	if !c.config.Enabled {
		c.logger.Info("Stock consistency check disabled")
		return nil
	}

	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.isRunning = true
	c.mu.Unlock()

	go c.runLoop(ctx, done)

	c.logger.Info("Stock consistency check started",
		zap.Duration("interval", c.config.Interval),
		zap.Bool("run_on_start", c.config.RunOnStart),
	)
	return nil
}

// Stop stops the loop and waits for an in-flight check, bounded by ctx
func (c *ConsistencyChecker) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	cancel()

	select {
	case <-done:
		c.logger.Info("Stock consistency check stopped")
		return nil
	case <-ctx.Done():
		c.logger.Warn("Stock consistency check stop timed out")
		return ctx.Err()
	}
}

func (c *ConsistencyChecker) runLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	if c.config.RunOnStart {
		_, _ = c.RunOnce(ctx)
	}

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = c.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single check with the configured timeout
func (c *ConsistencyChecker) RunOnce(ctx context.Context) ([]inventoryapp.Discrepancy, error) {
	c.mu.Lock()
	if c.checking {
		c.mu.Unlock()
		return nil, ErrCheckInProgress
	}
	c.checking = true
	c.mu.Unlock()

	checkCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	found, err := c.verifier.VerifyConsistency(checkCtx)
	result := &CheckResult{
		RanAt:         start,
		Duration:      time.Since(start),
		Discrepancies: len(found),
		Err:           err,
	}

	c.mu.Lock()
	c.checking = false
	c.last = result
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("Stock consistency check failed", zap.Error(err))
		return nil, err
	}
	for _, d := range found {
		c.logger.Warn("Stock differs from move history",
			zap.String("product_id", d.ProductID.String()),
			zap.String("on_hand_qty", d.OnHandQty.String()),
			zap.String("moves_sum", d.MovesSum.String()),
		)
	}
	c.logger.Debug("Stock consistency check completed",
		zap.Int("discrepancies", len(found)),
		zap.Duration("duration", result.Duration),
	)
	return found, nil
}

// LastResult returns the outcome of the most recent check, if any
func (c *ConsistencyChecker) LastResult() (CheckResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return CheckResult{}, false
	}
	return *c.last, true
}
