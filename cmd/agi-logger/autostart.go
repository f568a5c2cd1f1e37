package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/domain"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/autostart"
)

// defaultStatusFeed is where the flight-controller bridge publishes
// vehicle-status datagrams.
const defaultStatusFeed = "0.0.0.0:24587"

func cmdAutostart(ctx context.Context, configPath string, args []string) error {
	fs := flag.NewFlagSet("autostart", flag.ContinueOnError)
	listen := fs.String("listen", defaultStatusFeed, "UDP address of the vehicle status feed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.cfg.Logger.AutoStart {
		return domain.NewDomainError("cmdAutostart", domain.ErrInvalidConfig,
			"auto_start is disabled in configuration")
	}

	source := &autostart.UDPSource{Address: *listen, Logger: a.logger}
	samples, err := source.Watch(ctx)
	if err != nil {
		return err
	}

	strategy := autostart.ForBehavior(a.cfg.Logger.AutoStartBehavior)
	monitor := autostart.NewMonitor(a.manager, strategy, a.logger, a.bus)

	fmt.Println(okStyle.Render(fmt.Sprintf("Auto-start monitor running (%s behavior, feed %s)",
		a.cfg.Logger.AutoStartBehavior, *listen)))
	a.logger.Info("autostart monitor initialized",
		"behavior", a.cfg.Logger.AutoStartBehavior, "listen", *listen)

	if err := monitor.Run(ctx, samples); err != nil {
		return err
	}
	return ctx.Err()
}
