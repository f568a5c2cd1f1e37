package recorder

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/tracer"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/eventbus"
)

const (
	// DefaultGracePeriod is how long a detached launch waits before deciding
	// the recorder came up. A recorder missing its runtime or its topics
	// exits well inside this window.
	DefaultGracePeriod = 500 * time.Millisecond

	// DefaultStopPollInterval and DefaultStopTimeout bound how long Stop
	// waits for the recorder to drain after SIGINT. Hitting the timeout is
	// not an error; the manifest is written regardless.
	DefaultStopPollInterval = 500 * time.Millisecond
	DefaultStopTimeout      = 30 * time.Second
)

// BuildFunc turns resolved settings and an output path into the recorder's
// argument vector. Production uses BuildCommand; tests substitute a harmless
// executable.
type BuildFunc func(settings config.LoggerConfig, outputPath string) ([]string, error)

// ManagerConfig holds the dependencies and tunables of a Manager.
type ManagerConfig struct {
	Settings config.LoggerConfig
	Store    StateStore
	Logger   *slog.Logger
	Bus      domain.EventBus // optional
	Build    BuildFunc       // defaults to BuildCommand

	GracePeriod      time.Duration
	StopPollInterval time.Duration
	StopTimeout      time.Duration
}

// StartOptions selects the launch mode for one session.
type StartOptions struct {
	// Background spawns the recorder detached and returns immediately.
	// The default is an attached run that blocks until the recorder exits.
	Background bool
}

// Manager supervises the single recording session: start/stop/status, the
// persisted session identity, and the duration-bounded auto-stop timer.
//
// Liveness is always re-derived from the process table rather than trusted
// from the persisted record; the CLI that stops a recording is usually not
// the process that started it.
type Manager struct {
	settings config.LoggerConfig
	store    StateStore
	logger   *slog.Logger
	bus      domain.EventBus
	build    BuildFunc

	gracePeriod      time.Duration
	stopPollInterval time.Duration
	stopTimeout      time.Duration
}

// NewManager creates a Manager. Zero-valued tunables fall back to defaults.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Build == nil {
		cfg.Build = BuildCommand
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.StopPollInterval <= 0 {
		cfg.StopPollInterval = DefaultStopPollInterval
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	return &Manager{
		settings:         cfg.Settings,
		store:            cfg.Store,
		logger:           cfg.Logger,
		bus:              cfg.Bus,
		build:            cfg.Build,
		gracePeriod:      cfg.GracePeriod,
		stopPollInterval: cfg.StopPollInterval,
		stopTimeout:      cfg.StopTimeout,
	}
}

// IsRecording reports whether a recording session is active. A persisted
// record whose process no longer exists is cleared as a side effect; this
// lazy cleanup is the only garbage collection for stale state.
func (m *Manager) IsRecording() bool {
	state, ok := m.store.Read()
	if !ok {
		return false
	}
	if !processAlive(state.PID) {
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("failed to clear stale recording state", "error", err)
		}
		return false
	}
	return true
}

// Status returns the persisted session identity without probing liveness.
func (m *Manager) Status() (*domain.RecordingState, bool) {
	return m.store.Read()
}

// Start launches a recording session. Attached runs block until the recorder
// exits (typically via operator interrupt) and never persist state; detached
// runs persist state, verify the recorder survived the grace period, and arm
// the auto-stop timer when a duration limit is configured.
func (m *Manager) Start(ctx context.Context, opts StartOptions) (*domain.RecordingState, error) {
	ctx, span := tracer.StartSpan(ctx, "recorder.start",
		attribute.Bool("background", opts.Background))
	defer span.End()

	if m.IsRecording() {
		err := domain.NewDomainError("Recorder.Start", domain.ErrAlreadyActive, "")
		tracer.RecordError(span, err)
		return nil, err
	}

	bagName := m.sessionName(time.Now())
	fullBagPath, err := m.ensureOutputDir(bagName)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	cmd, err := m.build(m.settings, fullBagPath)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("bag_name", bagName))

	if !opts.Background {
		return m.runAttached(ctx, bagName, fullBagPath, cmd)
	}
	return m.runDetached(ctx, bagName, fullBagPath, cmd)
}

// Stop signals the active recorder and waits for it to drain, then writes
// the manifest and clears the persisted state. Stopping an already-dead
// recorder is not an error; a second Stop after a successful one is.
func (m *Manager) Stop(ctx context.Context) error {
	ctx, span := tracer.StartSpan(ctx, "recorder.stop")
	defer span.End()

	state, ok := m.store.Read()
	if !ok {
		err := domain.NewDomainError("Recorder.Stop", domain.ErrNoActiveSession, "")
		tracer.RecordError(span, err)
		return err
	}

	process, err := os.FindProcess(state.PID)
	if err == nil {
		err = process.Signal(syscall.SIGINT)
	}
	if err != nil {
		// Already gone. Stop stays idempotent with respect to a dead
		// recorder: clear and report success.
		m.logger.Info("recorder already stopped", "pid", state.PID)
		if clearErr := m.store.Clear(); clearErr != nil {
			return clearErr
		}
		return nil
	}

	deadline := time.Now().Add(m.stopTimeout)
	for time.Now().Before(deadline) {
		if !m.IsRecording() {
			break
		}
		time.Sleep(m.stopPollInterval)
	}

	if err := WriteMetadata(state, m.settings); err != nil {
		tracer.RecordError(span, err)
		return err
	}
	if err := m.store.Clear(); err != nil {
		return err
	}

	m.logger.Info("recording stopped", "bag_name", state.BagName, "pid", state.PID)
	m.publish(ctx, domain.EventRecordingStopped, state)
	return nil
}

// --- internal ---

func (m *Manager) sessionName(now time.Time) string {
	name := "agi_log_" + now.Format("20060102_150405")
	if suffix := m.settings.Name; suffix != "" {
		name += "_" + suffix
	}
	return name
}

func (m *Manager) ensureOutputDir(bagName string) (string, error) {
	if err := os.MkdirAll(m.settings.BagPath, 0o755); err != nil {
		return "", domain.WrapOp("Recorder.Start", err)
	}
	return filepath.Join(m.settings.BagPath, bagName), nil
}

func (m *Manager) runAttached(ctx context.Context, bagName, fullBagPath string, cmdArgs []string) (*domain.RecordingState, error) {
	state := &domain.RecordingState{
		PID:       0,
		BagName:   bagName,
		BagPath:   fullBagPath,
		StartTime: time.Now(),
		Command:   cmdArgs,
	}

	cmd := exec.Command(cmdArgs[0], cmdArgs[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// The terminal interrupt that ends an attached run is addressed to the
	// whole foreground process group. Swallow it here so the recorder dies
	// and this process survives to write the manifest.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		for range interrupts {
		}
	}()

	m.logger.Info("recording started", "bag_name", bagName, "mode", "attached")
	m.publish(ctx, domain.EventRecordingStarted, state)

	// The recorder's exit status is not interpreted; interrupt-driven exits
	// are the normal end of an attached session.
	_ = cmd.Run()

	if err := WriteMetadata(state, m.settings); err != nil {
		return nil, err
	}
	m.publish(ctx, domain.EventRecordingStopped, state)
	return state, nil
}

func (m *Manager) runDetached(ctx context.Context, bagName, fullBagPath string, cmdArgs []string) (*domain.RecordingState, error) {
	cmd := exec.Command(cmdArgs[0], cmdArgs[1:]...)
	// Own session: interrupts aimed at the CLI must not reach a detached
	// recorder. Stdin stays on /dev/null.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, domain.NewDomainError("Recorder.Start", domain.ErrLaunchFailed, err.Error())
	}

	state := &domain.RecordingState{
		PID:       cmd.Process.Pid,
		BagName:   bagName,
		BagPath:   fullBagPath,
		StartTime: time.Now(),
		Command:   cmdArgs,
	}
	if err := m.store.Write(state); err != nil {
		return nil, err
	}

	// Reap the child if it exits while this process is still alive, and use
	// the same channel to detect an immediate failure.
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case <-exited:
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("failed to clear recording state", "error", err)
		}
		return nil, domain.NewDomainError("Recorder.Start", domain.ErrLaunchFailed,
			"ensure ROS 2 is sourced and topics exist")
	case <-time.After(m.gracePeriod):
	}

	if m.settings.DurationMinutes > 0 {
		duration := time.Duration(m.settings.DurationMinutes * float64(time.Minute))
		time.AfterFunc(duration, func() {
			// Fire-and-forget: a manual stop may have won the race, in
			// which case this is a no-op on an idle controller.
			if err := m.Stop(context.Background()); err != nil {
				m.logger.Debug("duration timer stop", "error", err)
			}
		})
		m.logger.Info("auto-stop scheduled", "after", duration)
	}

	m.logger.Info("recording started",
		"bag_name", bagName, "pid", state.PID, "mode", "detached")
	m.publish(ctx, domain.EventRecordingStarted, state)
	return state, nil
}

func (m *Manager) publish(ctx context.Context, eventType domain.EventType, state *domain.RecordingState) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(ctx, eventbus.NewEvent(eventType, state))
}

// processAlive probes a PID with the null signal. Any delivery failure counts
// as dead; a PID recycled to another user's process shows up as a permission
// error and ends the session the same way the original process vanishing
// would.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
