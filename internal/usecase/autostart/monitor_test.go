package autostart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/logger"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/recorder"
)

type fakeStarter struct {
	mu        sync.Mutex
	recording bool
	starts    int
	err       error
}

func (f *fakeStarter) IsRecording() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recording
}

func (f *fakeStarter) Start(ctx context.Context, opts recorder.StartOptions) (*domain.RecordingState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.err != nil {
		return nil, f.err
	}
	f.recording = true
	return &domain.RecordingState{PID: 1234, BagName: "agi_log_test"}, nil
}

func (f *fakeStarter) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

// runSamples feeds the samples through a monitor and waits for the loop to
// drain them.
func runSamples(t *testing.T, m *Monitor, samples ...domain.ArmedSample) {
	t.Helper()
	feed := make(chan domain.ArmedSample)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := m.Run(context.Background(), feed); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()
	for _, s := range samples {
		feed <- s
	}
	close(feed)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not drain the feed")
	}
}

func disarmed() domain.ArmedSample { return domain.ArmedSample{Armed: false, ArmingState: 1} }
func armed() domain.ArmedSample    { return domain.ArmedSample{Armed: true, ArmingState: 2} }

func TestToggleArmFirstSampleSeedsBaseline(t *testing.T) {
	starter := &fakeStarter{}
	m := NewMonitor(starter, ForBehavior(BehaviorToggleArm), logger.Discard(), nil)

	// Already armed at startup: no transition was observed, no start.
	runSamples(t, m, armed(), armed())
	if got := starter.startCount(); got != 0 {
		t.Fatalf("startCount = %d, want 0", got)
	}
}

func TestToggleArmStartsOnTransition(t *testing.T) {
	starter := &fakeStarter{}
	m := NewMonitor(starter, ForBehavior(BehaviorToggleArm), logger.Discard(), nil)

	runSamples(t, m, disarmed(), armed(), armed())
	if got := starter.startCount(); got != 1 {
		t.Fatalf("startCount = %d, want 1", got)
	}
}

func TestToggleArmIgnoresTransitionWhileRecording(t *testing.T) {
	starter := &fakeStarter{recording: true}
	m := NewMonitor(starter, ForBehavior(BehaviorToggleArm), logger.Discard(), nil)

	runSamples(t, m, disarmed(), armed())
	if got := starter.startCount(); got != 0 {
		t.Fatalf("startCount = %d, want 0", got)
	}
}

func TestLevelArmStartsWheneverArmedAndIdle(t *testing.T) {
	starter := &fakeStarter{}
	m := NewMonitor(starter, ForBehavior(BehaviorLevelArm), logger.Discard(), nil)

	// First armed sample starts; once recording, later samples are ignored.
	runSamples(t, m, armed(), armed(), armed())
	if got := starter.startCount(); got != 1 {
		t.Fatalf("startCount = %d, want 1", got)
	}
}

func TestStartErrorDoesNotStopMonitor(t *testing.T) {
	starter := &fakeStarter{err: errors.New("launch failed")}
	m := NewMonitor(starter, ForBehavior(BehaviorLevelArm), logger.Discard(), nil)

	runSamples(t, m, armed(), armed())
	if got := starter.startCount(); got != 2 {
		t.Fatalf("startCount = %d, want 2 retries", got)
	}
}

func TestUnknownBehaviorFallsBackToLevel(t *testing.T) {
	if _, ok := ForBehavior("bogus").(levelArm); !ok {
		t.Fatalf("ForBehavior(bogus) = %T, want levelArm", ForBehavior("bogus"))
	}
}
