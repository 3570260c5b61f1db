package main

import (
	"fmt"
	"strconv"

	"github.com/AndrewLester/ntpstep/internal/ui"
	"github.com/AndrewLester/ntpstep/pkg/api"
	"github.com/spf13/cobra"
)

var adjustCmd = &cobra.Command{
	Use:     "adjust <offset_ms>",
	Short:   "Move the clock by a relative offset in milliseconds",
	Example: "  ntpstep adjust 250\n  ntpstep adjust -- -1500",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("offset %q is not a number", args[0])
		}
		return runStep(func(a *api.API) *api.StepResult { return a.AdjustTimeByOffset(offset) })
	},
}

var setCmd = &cobra.Command{
	Use:   "set <unix_ms>",
	Short: "Set the clock to an absolute Unix time in milliseconds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unixMs, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("time %q is not a number", args[0])
		}
		return runStep(func(a *api.API) *api.StepResult { return a.SetSystemTime(unixMs) })
	},
}

func runStep(step func(*api.API) *api.StepResult) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	result := step(app.api)
	if jsonOutput {
		if err := printJSON(result); err != nil {
			return err
		}
	} else if result.Success {
		fmt.Println(ui.OkStyle(result.Message))
		fmt.Printf("  previous   %s\n", ui.UnixMillis(result.PreviousTime))
		fmt.Printf("  new        %s\n", ui.UnixMillis(result.NewTime))
		fmt.Printf("  adjusted   %s\n", ui.Millis(result.AdjustedMs))
	} else {
		fmt.Println(ui.ErrorStyle(result.Code), result.Error)
	}

	if !result.Success {
		return exitError{result.Code}
	}
	return nil
}
