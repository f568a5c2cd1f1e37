package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

func cmdBag(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "play" {
		return fmt.Errorf("bag: missing subcommand (play)")
	}

	fs := flag.NewFlagSet("bag play", flag.ContinueOnError)
	rate := fs.Float64("rate", 1.0, "playback rate")
	loop := fs.Bool("loop", false, "loop playback")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("bag play: missing bag path")
	}
	return bagPlay(ctx, fs.Arg(0), *rate, *loop)
}

// bagPlay shells out to the playback tool with stdio attached, so its
// progress output lands on the operator's terminal.
func bagPlay(ctx context.Context, bag string, rate float64, loop bool) error {
	cmdArgs := []string{"bag", "play", bag}
	if rate != 1.0 {
		cmdArgs = append(cmdArgs, "--rate", strconv.FormatFloat(rate, 'g', -1, 64))
	}
	if loop {
		cmdArgs = append(cmdArgs, "--loop")
	}

	cmd := exec.CommandContext(ctx, "ros2", cmdArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fmt.Println(valueStyle.Render("Running: " + cmd.String()))
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("ros2 not found in PATH; is ROS 2 installed and sourced?")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			return exitStatus(exitErr.ExitCode())
		}
		return err
	}
	return nil
}
