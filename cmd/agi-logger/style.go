package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	taglineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))  // cyan
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	optionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // green
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	promptStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const banner = `
     █████╗  ██████╗ ██╗
    ██╔══██╗██╔════╝ ██║
    ███████║██║  ███╗██║
    ██╔══██║██║   ██║██║
    ██║  ██║╚██████╔╝██║
    ╚═╝  ╚═╝ ╚═════╝ ╚═╝
    ██╗      ██████╗  ██████╗  ██████╗ ███████╗██████╗
    ██║     ██╔═══██╗██╔════╝ ██╔════╝ ██╔════╝██╔══██╗
    ██║     ██║   ██║██║  ███╗██║  ███╗█████╗  ██████╔╝
    ██║     ██║   ██║██║   ██║██║   ██║██╔══╝  ██╔══██╗
    ███████╗╚██████╔╝╚██████╔╝╚██████╔╝███████╗██║  ██║
    ╚══════╝ ╚═════╝  ╚═════╝  ╚═════╝ ╚══════╝╚═╝  ╚═╝`

func printBanner() {
	fmt.Println(bannerStyle.Render(banner))
	fmt.Println(taglineStyle.Render("    Advanced ROS 2 logging for the Agibix platform"))
	fmt.Println()
}

// option renders a numbered menu entry.
func option(n int, label string) string {
	return fmt.Sprintf("%s %s", optionStyle.Render(fmt.Sprintf("%d)", n)), label)
}

// kv renders a "key: value" preview line.
func kv(key string, value any) string {
	return fmt.Sprintf("%s: %s", keyStyle.Render("- "+key), valueStyle.Render(fmt.Sprint(value)))
}
