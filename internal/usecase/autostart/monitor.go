// Package autostart watches an armed-state feed and starts a background
// recording session when the configured strategy fires. Start failures are
// logged and the monitor keeps watching; it never takes the feed down.
package autostart

import (
	"context"
	"log/slog"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/eventbus"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/recorder"
)

// Strategy behavior names accepted in configuration.
const (
	BehaviorToggleArm = "toggle_arm"
	BehaviorLevelArm  = "level_arm"
)

// Starter is the slice of the session controller the monitor needs.
// recorder.Manager satisfies it.
type Starter interface {
	IsRecording() bool
	Start(ctx context.Context, opts recorder.StartOptions) (*domain.RecordingState, error)
}

// Strategy decides, per sample, whether a start should be attempted. The
// monitor still requires the controller to be idle before acting.
type Strategy interface {
	ShouldStart(sample domain.ArmedSample) bool
}

// toggleArm fires only on an observed arming-state transition that lands on
// armed. The first sample seeds the baseline and never fires.
type toggleArm struct {
	last    int
	hasLast bool
}

func (t *toggleArm) ShouldStart(sample domain.ArmedSample) bool {
	if !t.hasLast {
		t.last = sample.ArmingState
		t.hasLast = true
		return false
	}
	fire := sample.Armed && sample.ArmingState != t.last
	t.last = sample.ArmingState
	return fire
}

// levelArm fires on every armed sample; the monitor's idle check keeps it
// from re-triggering during a session.
type levelArm struct{}

func (levelArm) ShouldStart(sample domain.ArmedSample) bool { return sample.Armed }

// ForBehavior maps a configured behavior name to its strategy. Anything
// other than toggle_arm gets the level strategy.
func ForBehavior(name string) Strategy {
	if name == BehaviorToggleArm {
		return &toggleArm{}
	}
	return levelArm{}
}

// Monitor drives a strategy over an armed-state feed.
type Monitor struct {
	starter  Starter
	strategy Strategy
	logger   *slog.Logger
	bus      domain.EventBus // optional
}

func NewMonitor(starter Starter, strategy Strategy, logger *slog.Logger, bus domain.EventBus) *Monitor {
	return &Monitor{starter: starter, strategy: strategy, logger: logger, bus: bus}
}

// Run consumes samples until ctx is cancelled or the feed closes. Each
// firing sample triggers at most one background start; errors from the
// controller are logged and the loop continues.
func (m *Monitor) Run(ctx context.Context, samples <-chan domain.ArmedSample) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sample, ok := <-samples:
			if !ok {
				return nil
			}
			if !m.strategy.ShouldStart(sample) {
				continue
			}
			if m.starter.IsRecording() {
				continue
			}
			m.logger.Info("vehicle armed, starting recording", "arming_state", sample.ArmingState)
			state, err := m.starter.Start(ctx, recorder.StartOptions{Background: true})
			if err != nil {
				m.logger.Error("auto-start failed", "error", err)
				continue
			}
			if m.bus != nil {
				m.bus.Publish(ctx, eventbus.NewEvent(domain.EventAutoStartTriggered, state))
			}
		}
	}
}
