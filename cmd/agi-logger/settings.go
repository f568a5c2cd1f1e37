package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SasaKuruppuarachchi/tcp-communication/internal/infra/config"
)

// sections the editor can be preselected into from the interactive menu.
const (
	sectionLogger    = "logger"
	sectionTCPServer = "tcp_server"
	sectionTCPClient = "tcp_client"
)

// cmdSettings runs the interactive configuration editor over the raw
// document, so unknown keys survive an edit-save round trip. startSection
// skips the menu and jumps straight into a section.
func cmdSettings(configPath, startSection string) error {
	raw, err := config.LoadRaw(configPath)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		choice := ""
		switch startSection {
		case sectionLogger:
			choice = "2"
		case sectionTCPServer, sectionTCPClient:
			choice = "3"
		default:
			fmt.Println()
			fmt.Println(headingStyle.Render("Settings menu"))
			fmt.Println(option(1, "Show config"))
			fmt.Println(option(2, "Edit logger settings"))
			fmt.Println(option(3, "Edit TCP transfer settings"))
			fmt.Println(option(4, "Save"))
			fmt.Println(option(5, "Exit"))
			choice = prompt(reader, "Select option: ")
		}

		switch choice {
		case "1":
			out, err := yaml.Marshal(raw)
			if err != nil {
				return err
			}
			fmt.Println(headingStyle.Render("--- config ---"))
			fmt.Println(string(out))
		case "2":
			editSection(reader, raw, config.RootKey+".logger")
		case "3":
			role := ""
			switch startSection {
			case sectionTCPServer:
				role = "server"
			case sectionTCPClient:
				role = "client"
			default:
				role = strings.ToLower(prompt(reader, "Edit TCP settings for [server/client]: "))
			}
			if role != "server" && role != "client" {
				fmt.Println(errorStyle.Render("Invalid selection"))
				continue
			}
			editSection(reader, raw, config.RootKey+".tcp_file_communication."+role)
		case "4":
			if err := config.SaveRaw(raw, configPath); err != nil {
				return err
			}
			fmt.Println(okStyle.Render("Saved to " + configPath))
		case "5", "":
			return nil
		default:
			fmt.Println(errorStyle.Render("Invalid selection"))
		}

		if startSection != "" {
			// A preselected section edits once and returns to the caller.
			return nil
		}
	}
}

// editSection lists a section's dotted keys and applies one edit per prompt
// until the operator presses Enter to go back.
func editSection(reader *bufio.Reader, raw map[string]any, dotted string) {
	for {
		section := config.Section(raw, dotted)
		entries := config.IterKeys(section, dotted)
		if len(entries) == 0 {
			fmt.Println(warnStyle.Render("No editable keys found"))
			return
		}

		fmt.Println(promptStyle.Render("Available keys:"))
		for i, entry := range entries {
			short := entry.Key[strings.LastIndex(entry.Key, ".")+1:]
			fmt.Printf("%s %s = %s\n",
				keyStyle.Render(strconv.Itoa(i+1)+")"), short, valueStyle.Render(fmt.Sprint(entry.Value)))
		}

		rawIndex := prompt(reader, "Select number to edit (or press Enter to go back): ")
		if rawIndex == "" {
			return
		}
		index, err := strconv.Atoi(rawIndex)
		if err != nil || index < 1 || index > len(entries) {
			fmt.Println(errorStyle.Render("Selection out of range"))
			continue
		}

		entry := entries[index-1]
		fmt.Printf("%s %s (current: %v)\n", warnStyle.Render("Editing"), entry.Key, entry.Value)
		value := prompt(reader, "Enter new value (press Enter to keep current): ")
		if value == "" {
			fmt.Println(warnStyle.Render("No change"))
			continue
		}
		if err := config.UpdateKey(raw, entry.Key, config.ParseValue(value)); err != nil {
			fmt.Println(errorStyle.Render("Update failed: " + err.Error()))
			continue
		}
		fmt.Println(okStyle.Render("Value updated"))
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(promptStyle.Render(label))
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
