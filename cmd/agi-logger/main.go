package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/logger"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/tracer"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/eventbus"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/recorder"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("agi-logger", flag.ContinueOnError)
	configPath := global.String("config", config.DefaultPath(), "config file path")
	if err := global.Parse(args); err != nil {
		if err == flag.ErrHelp {
			showUsage()
			return 0
		}
		return 1
	}
	rest := global.Args()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(rest) == 0 {
		return report(runMenu(ctx, *configPath))
	}

	switch rest[0] {
	case "help", "--help", "-h":
		showUsage()
		return 0
	case "record":
		return report(cmdRecord(ctx, *configPath, rest[1:]))
	case "bag":
		return report(cmdBag(ctx, rest[1:]))
	case "tcp":
		return report(cmdTCP(ctx, *configPath, rest[1:]))
	case "settings":
		return report(cmdSettings(*configPath, ""))
	case "autostart":
		return report(cmdAutostart(ctx, *configPath, rest[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'agi-logger --help' for usage.\n", rest[0])
		return 1
	}
}

// exitStatus lets a command hand back a specific process exit code without
// it being an error (e.g. `record status` on an idle controller).
type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// report renders a command error at the boundary and maps it to the process
// exit code: 0 success, 1 handled error, 130 on interrupt.
func report(err error) int {
	if err == nil {
		return 0
	}
	var status exitStatus
	if errors.As(err, &status) {
		return int(status)
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	code := domain.ErrorCodeOf(err)
	if code != domain.CodeUnknown {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error [%s]: %v", code, err)))
	} else {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	}
	return 1
}

// app bundles the wiring every subcommand shares: configuration, logging,
// tracing, the event bus and the session controller.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	bus     *eventbus.Bus
	manager *recorder.Manager

	closers []func()
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log}
	a.closers = append(a.closers, func() { _ = closeLog() })

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracing)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = shutdownTracer(context.Background()) })

	a.bus = eventbus.New(log)
	a.closers = append(a.closers, a.bus.Close)
	// Lifecycle events land in the application log; subscribers elsewhere
	// (the tests, future integrations) attach their own handlers.
	a.bus.SubscribeAll(eventbus.LogHandler(log))

	store, err := recorder.NewFileStore()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.manager = recorder.NewManager(recorder.ManagerConfig{
		Settings: cfg.Logger,
		Store:    store,
		Logger:   log,
		Bus:      a.bus,
	})
	return a, nil
}

// Close releases app resources in reverse acquisition order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func showUsage() {
	fmt.Println(`agi-logger - bag recording and transfer for the Agibix platform

USAGE:
    agi-logger [--config PATH] [COMMAND]

COMMANDS:
    record start [--background]   Start a recording session
    record stop                   Stop the active session
    record status                 Show session status (exit 1 when idle)
    bag play BAG [--rate R] [--loop]
                                  Play a recorded bag
    tcp send [--file F] [--host H] [--port P]
                                  Serve the configured file to receivers
    tcp receive [--host H] [--port P] [--dest D]
                                  Fetch a file from a sender ("--host auto"
                                  resolves the sender via mDNS)
    tcp run [overrides]           Use the configured transfer mode
    tcp discover                  List senders advertising on the LAN
    settings                      Interactive configuration editor
    autostart [--listen ADDR]     Watch the armed-state feed and auto-start

    (no command)                  Interactive menu

FLAGS:
    --config PATH    Config file path (default: cfg/configs.yaml)
    -h, --help       Show this help message`)
}
