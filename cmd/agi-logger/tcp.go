package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/logger"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/transfer"
)

// tcpOverrides carries the command-line overrides shared by the tcp
// subcommands; zero values mean "use the configured value".
type tcpOverrides struct {
	file string
	host string
	port int
	dest string
}

func tcpFlagSet(name string) (*flag.FlagSet, *tcpOverrides) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	o := &tcpOverrides{}
	fs.StringVar(&o.file, "file", "", "file path to send (sender)")
	fs.StringVar(&o.host, "host", "", "host override ('auto' resolves the sender via mDNS)")
	fs.IntVar(&o.port, "port", 0, "port override")
	fs.StringVar(&o.dest, "dest", "", "destination directory (receiver)")
	return fs, o
}

func cmdTCP(ctx context.Context, configPath string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("tcp: missing subcommand (send, receive, run, discover)")
	}

	sub := args[0]
	if sub == "discover" {
		return tcpDiscover(ctx)
	}

	fs, o := tcpFlagSet("tcp " + sub)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	switch sub {
	case "send":
		return tcpSend(ctx, a, o)
	case "receive":
		return tcpReceive(ctx, a, o)
	case "run":
		return tcpRun(ctx, a, o)
	default:
		return fmt.Errorf("tcp: unknown subcommand %q", sub)
	}
}

func tcpSend(ctx context.Context, a *app, o *tcpOverrides) error {
	cfg := a.cfg.TCP.Server
	if o.file != "" {
		cfg.FilePath = o.file
	}
	if o.host != "" {
		cfg.Host = o.host
	}
	if o.port != 0 {
		cfg.Port = o.port
	}
	if cfg.FilePath == "" {
		return domain.NewDomainError("tcpSend", domain.ErrInvalidConfig, "file path is required for TCP send")
	}

	sender := transfer.NewSender(cfg, a.manager.IsRecording, a.logger, a.bus)

	if cfg.Advertise {
		hostname, _ := os.Hostname()
		discovery := transfer.NewDiscovery(a.logger)
		go func() {
			if err := discovery.Advertise(ctx, hostname, cfg.Port); err != nil {
				a.logger.Warn("mdns advertisement failed", "error", err)
			}
		}()
	}

	fmt.Println(okStyle.Render(fmt.Sprintf("Serving %s on %s:%d (Ctrl+C to stop)", cfg.FilePath, cfg.Host, cfg.Port)))
	if err := sender.Serve(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

func tcpReceive(ctx context.Context, a *app, o *tcpOverrides) error {
	cfg := a.cfg.TCP.Client
	if o.host != "" {
		cfg.Host = o.host
	}
	if o.port != 0 {
		cfg.Port = o.port
	}
	if o.dest != "" {
		cfg.DestinationPath = o.dest
	}

	// "auto" resolves the sender by browsing for its mDNS advertisement.
	if strings.EqualFold(cfg.Host, "auto") {
		endpoint, err := resolveSender(ctx, a)
		if err != nil {
			return err
		}
		cfg.Host = endpoint.Host
		cfg.Port = endpoint.Port
	}

	receiver := transfer.NewReceiver(cfg, a.manager.IsRecording, a.logger, a.bus)
	outputPath, err := receiver.Receive(ctx)
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render("Received file: " + outputPath))
	return nil
}

func tcpRun(ctx context.Context, a *app, o *tcpOverrides) error {
	mode := strings.ToLower(a.cfg.TCP.Mode)
	if mode == "" || mode == "ask" {
		fmt.Print(promptStyle.Render("Start as server or client? [server/client]: "))
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		mode = strings.ToLower(strings.TrimSpace(line))
	}

	switch mode {
	case "server":
		return tcpSend(ctx, a, o)
	case "client":
		return tcpReceive(ctx, a, o)
	default:
		return domain.NewDomainError("tcpRun", domain.ErrInvalidConfig,
			fmt.Sprintf("unsupported tcp mode %q", mode))
	}
}

func tcpDiscover(ctx context.Context) error {
	discovery := transfer.NewDiscovery(logger.Discard())
	fmt.Println(valueStyle.Render("Scanning for senders..."))
	endpoints, err := discovery.Scan(ctx, transfer.DefaultScanTimeout)
	if err != nil {
		return err
	}
	if len(endpoints) == 0 {
		fmt.Println(warnStyle.Render("No senders found"))
		return exitStatus(1)
	}
	for _, e := range endpoints {
		fmt.Println(kv(e.Name, e.Address()))
	}
	return nil
}

func resolveSender(ctx context.Context, a *app) (transfer.Endpoint, error) {
	discovery := transfer.NewDiscovery(a.logger)
	endpoints, err := discovery.Scan(ctx, transfer.DefaultScanTimeout)
	if err != nil {
		return transfer.Endpoint{}, err
	}
	if len(endpoints) == 0 {
		return transfer.Endpoint{}, domain.NewDomainError("resolveSender", domain.ErrTransfer,
			"no sender advertising on the network")
	}
	a.logger.Info("resolved sender via mdns", "instance", endpoints[0].Name, "address", endpoints[0].Address())
	return endpoints[0], nil
}
