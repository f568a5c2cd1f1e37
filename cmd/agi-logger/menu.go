package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
)

// runMenu is the no-arguments entry point: a small interactive front end
// over the record, transfer and settings commands.
func runMenu(ctx context.Context, configPath string) error {
	printBanner()
	fmt.Println(option(1, "Record"))
	fmt.Println(option(2, "Transfer"))
	fmt.Println(option(3, "Settings"))
	fmt.Println(option(4, "Exit"))

	reader := bufio.NewReader(os.Stdin)
	switch prompt(reader, "Select option: ") {
	case "1":
		return menuRecord(ctx, configPath, reader)
	case "2":
		return menuTransfer(ctx, configPath, reader)
	case "3":
		return cmdSettings(configPath, "")
	default:
		return nil
	}
}

func menuRecord(ctx context.Context, configPath string, reader *bufio.Reader) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(headingStyle.Render("Record settings preview"))
	fmt.Println(kv("topics", strings.Join(cfg.Logger.Topics, ", ")))
	fmt.Println(kv("bag_path", cfg.Logger.BagPath))
	fmt.Println(kv("mcap", cfg.Logger.MCAP))
	fmt.Println(kv("compress", cfg.Logger.Compress))
	fmt.Println(kv("duration", cfg.Logger.DurationMinutes))
	fmt.Println(kv("max_bag_size", cfg.Logger.MaxBagSizeGB))

	switch strings.ToLower(prompt(reader, "Continue recording? [Enter = start / e = edit / n = back]: ")) {
	case "", "y":
		return recordStart(ctx, configPath, false)
	case "e":
		return cmdSettings(configPath, sectionLogger)
	default:
		return nil
	}
}

func menuTransfer(ctx context.Context, configPath string, reader *bufio.Reader) error {
	fmt.Println()
	fmt.Println(headingStyle.Render("Transfer"))
	fmt.Println(option(1, "Server"))
	fmt.Println(option(2, "Client"))
	fmt.Println(option(3, "Back"))

	sub := prompt(reader, "Select option: ")
	if sub != "1" && sub != "2" {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	fmt.Println()
	if sub == "1" {
		fmt.Println(headingStyle.Render("TCP server settings preview"))
		fmt.Println(kv("host", cfg.TCP.Server.Host))
		fmt.Println(kv("port", cfg.TCP.Server.Port))
		fmt.Println(kv("file_path", cfg.TCP.Server.FilePath))
	} else {
		fmt.Println(headingStyle.Render("TCP client settings preview"))
		fmt.Println(kv("host", cfg.TCP.Client.Host))
		fmt.Println(kv("port", cfg.TCP.Client.Port))
		fmt.Println(kv("destination_path", cfg.TCP.Client.DestinationPath))
	}

	switch strings.ToLower(prompt(reader, "Continue transfer? [Enter = start / e = edit / n = back]: ")) {
	case "", "y":
		a, err := newApp(ctx, configPath)
		if err != nil {
			return err
		}
		defer a.Close()
		if sub == "1" {
			return tcpSend(ctx, a, &tcpOverrides{})
		}
		return tcpReceive(ctx, a, &tcpOverrides{})
	case "e":
		if sub == "1" {
			return cmdSettings(configPath, sectionTCPServer)
		}
		return cmdSettings(configPath, sectionTCPClient)
	default:
		return nil
	}
}
