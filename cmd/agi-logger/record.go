package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
	"github.com/SasaKuruppuarachchi/tcp-communication/internal/usecase/recorder"
)

func cmdRecord(ctx context.Context, configPath string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("record: missing subcommand (start, stop, status)")
	}

	switch args[0] {
	case "start":
		fs := flag.NewFlagSet("record start", flag.ContinueOnError)
		background := fs.Bool("background", false, "run detached; stop later with 'record stop'")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return recordStart(ctx, configPath, *background)
	case "stop":
		return recordStop(ctx, configPath)
	case "status":
		return recordStatus(ctx, configPath)
	default:
		return fmt.Errorf("record: unknown subcommand %q", args[0])
	}
}

func recordStart(ctx context.Context, configPath string, background bool) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	printRecordPreview(a.cfg.Logger)

	state, err := a.manager.Start(ctx, recorder.StartOptions{Background: background})
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render("Started recording: " + state.BagName))
	return nil
}

func recordStop(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.manager.Stop(ctx); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("Recording stopped"))
	return nil
}

func recordStatus(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.manager.IsRecording() {
		fmt.Println(warnStyle.Render("Recording inactive"))
		return exitStatus(1)
	}
	state, ok := a.manager.Status()
	if !ok {
		fmt.Println(warnStyle.Render("Recording inactive"))
		return exitStatus(1)
	}
	fmt.Println(okStyle.Render("Recording active"))
	fmt.Println(kv("Bag name", state.BagName))
	fmt.Println(kv("Bag path", state.BagPath))
	fmt.Println(kv("PID", state.PID))
	return nil
}

func printRecordPreview(settings config.LoggerConfig) {
	fmt.Println(headingStyle.Render("======================================="))
	fmt.Println(headingStyle.Render("Starting new recording:"))
	fmt.Println(kv("Bag path", settings.BagPath))
	fmt.Println(kv("Duration", recorder.FormatLimit(settings.DurationMinutes, "minutes")))
	fmt.Println(kv("Topics", strings.Join(settings.Topics, ", ")))
	fmt.Println(kv("MCAP", enabled(settings.MCAP)))
	fmt.Println(kv("Compression", enabled(settings.Compress)))
	fmt.Println(kv("Max size", recorder.FormatLimit(settings.MaxBagSizeGB, "GB")))
	fmt.Println(headingStyle.Render("======================================="))
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
