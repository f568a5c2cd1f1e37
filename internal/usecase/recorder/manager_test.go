package recorder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/logger"
)

// sleepBuild substitutes a long-running harmless process for the recorder.
func sleepBuild(config.LoggerConfig, string) ([]string, error) {
	return []string{"sleep", "30"}, nil
}

// exitBuild substitutes a process that dies immediately.
func exitBuild(config.LoggerConfig, string) ([]string, error) {
	return []string{"false"}, nil
}

func newTestManager(t *testing.T, build BuildFunc) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	m := NewManager(ManagerConfig{
		Settings: config.LoggerConfig{
			Topics:  []string{"/fmu/out/vehicle_status"},
			BagPath: t.TempDir(),
		},
		Store:            store,
		Logger:           logger.Discard(),
		Build:            build,
		GracePeriod:      100 * time.Millisecond,
		StopPollInterval: 50 * time.Millisecond,
		StopTimeout:      5 * time.Second,
	})
	t.Cleanup(func() {
		// Kill any leftover detached process so tests don't leak children.
		if state, ok := store.Read(); ok && state.PID > 0 {
			if p, err := os.FindProcess(state.PID); err == nil {
				_ = p.Signal(syscall.SIGKILL)
			}
		}
	})
	return m, store
}

func TestStartEmptyTopicsLeavesStoreUntouched(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(ManagerConfig{
		Settings: config.LoggerConfig{BagPath: t.TempDir()},
		Store:    store,
		Logger:   logger.Discard(),
	})

	_, err := m.Start(context.Background(), StartOptions{Background: true})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if _, ok := store.Read(); ok {
		t.Error("store must stay empty after a failed build")
	}
}

func TestDetachedStartIsActive(t *testing.T) {
	m, store := newTestManager(t, sleepBuild)

	state, err := m.Start(context.Background(), StartOptions{Background: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if state.PID <= 0 {
		t.Errorf("pid = %d, want > 0", state.PID)
	}
	if !m.IsRecording() {
		t.Error("IsRecording should be true right after a detached start")
	}
	if persisted, ok := store.Read(); !ok || persisted.PID != state.PID {
		t.Errorf("persisted state = %+v, %v", persisted, ok)
	}

	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, ok := store.Read(); ok {
		t.Error("store must be empty after Stop")
	}
}

func TestStartWhileActive(t *testing.T) {
	m, _ := newTestManager(t, sleepBuild)

	if _, err := m.Start(context.Background(), StartOptions{Background: true}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop(context.Background())

	_, err := m.Start(context.Background(), StartOptions{Background: true})
	if !errors.Is(err, domain.ErrAlreadyActive) {
		t.Fatalf("err = %v, want ErrAlreadyActive", err)
	}
}

func TestIsRecordingSelfHealing(t *testing.T) {
	m, store := newTestManager(t, sleepBuild)

	state, err := m.Start(context.Background(), StartOptions{Background: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Kill the recorder out of band; the next liveness check must observe
	// the death and clear the persisted record.
	process, err := os.FindProcess(state.PID)
	if err != nil {
		t.Fatal(err)
	}
	if err := process.Signal(syscall.SIGKILL); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond) // let the reaper collect the child

	if m.IsRecording() {
		t.Error("IsRecording should be false after the process died")
	}
	if _, ok := store.Read(); ok {
		t.Error("stale state must be cleared by the liveness check")
	}
}

func TestStopWithoutSession(t *testing.T) {
	m, _ := newTestManager(t, sleepBuild)

	err := m.Stop(context.Background())
	if !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestStopTwice(t *testing.T) {
	m, _ := newTestManager(t, sleepBuild)

	if _, err := m.Start(context.Background(), StartOptions{Background: true}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	err := m.Stop(context.Background())
	if !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("second Stop err = %v, want ErrNoActiveSession", err)
	}
}

func TestStopDeadProcessIsIdempotent(t *testing.T) {
	m, store := newTestManager(t, sleepBuild)

	// A persisted record pointing at a long-gone PID: stop must treat the
	// signal failure as already-stopped and succeed.
	if err := store.Write(&domain.RecordingState{
		PID:     1 << 22, // beyond the default pid_max
		BagName: "agi_log_gone",
		BagPath: filepath.Join(t.TempDir(), "agi_log_gone"),
		Command: []string{"sleep", "30"},
	}); err != nil {
		t.Fatal(err)
	}

	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, ok := store.Read(); ok {
		t.Error("store must be cleared")
	}
}

func TestDetachedLaunchFailure(t *testing.T) {
	m, store := newTestManager(t, exitBuild)

	_, err := m.Start(context.Background(), StartOptions{Background: true})
	if !errors.Is(err, domain.ErrLaunchFailed) {
		t.Fatalf("err = %v, want ErrLaunchFailed", err)
	}
	if _, ok := store.Read(); ok {
		t.Error("store must be cleared after a failed launch")
	}
}

func TestStopWritesMetadata(t *testing.T) {
	m, _ := newTestManager(t, sleepBuild)

	state, err := m.Start(context.Background(), StartOptions{Background: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if _, err := os.Stat(filepath.Join(state.BagPath, MetadataFileName)); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestAttachedRunWritesMetadataWithoutState(t *testing.T) {
	m, store := newTestManager(t, func(config.LoggerConfig, string) ([]string, error) {
		return []string{"true"}, nil
	})

	state, err := m.Start(context.Background(), StartOptions{Background: false})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if state.PID != 0 {
		t.Errorf("attached pid = %d, want 0", state.PID)
	}
	if _, ok := store.Read(); ok {
		t.Error("attached runs must not persist state")
	}
	if _, err := os.Stat(filepath.Join(state.BagPath, MetadataFileName)); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestAutoStopTimer(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(ManagerConfig{
		Settings: config.LoggerConfig{
			Topics:          []string{"/a"},
			BagPath:         t.TempDir(),
			DurationMinutes: 0.002, // 120ms
		},
		Store:            store,
		Logger:           logger.Discard(),
		Build:            sleepBuild,
		GracePeriod:      50 * time.Millisecond,
		StopPollInterval: 50 * time.Millisecond,
		StopTimeout:      2 * time.Second,
	})

	state, err := m.Start(context.Background(), StartOptions{Background: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		if p, err := os.FindProcess(state.PID); err == nil {
			_ = p.Signal(syscall.SIGKILL)
		}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !m.IsRecording() {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if m.IsRecording() {
		t.Fatal("auto-stop timer did not stop the recording")
	}
	if _, ok := store.Read(); ok {
		t.Error("store must be empty after the timer fired")
	}
}

func TestSessionName(t *testing.T) {
	m := NewManager(ManagerConfig{
		Settings: config.LoggerConfig{Name: "flight"},
		Store:    NewMemoryStore(),
		Logger:   logger.Discard(),
	})
	at := time.Date(2026, 8, 30, 12, 0, 5, 0, time.UTC)
	if got, want := m.sessionName(at), "agi_log_20260830_120005_flight"; got != want {
		t.Errorf("sessionName = %q, want %q", got, want)
	}

	m = NewManager(ManagerConfig{Settings: config.LoggerConfig{}, Store: NewMemoryStore(), Logger: logger.Discard()})
	if got, want := m.sessionName(at), "agi_log_20260830_120005"; got != want {
		t.Errorf("sessionName = %q, want %q", got, want)
	}
}
