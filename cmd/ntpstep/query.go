package main

import (
	"fmt"
	"strconv"

	"github.com/AndrewLester/ntpstep/internal/ui"
	"github.com/AndrewLester/ntpstep/pkg/api"
	"github.com/AndrewLester/ntpstep/pkg/ntp"
	"github.com/spf13/cobra"
)

var compare bool

var queryCmd = &cobra.Command{
	Use:   "query [server]",
	Short: "Run one NTP exchange and print the measurement",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		server := app.server(args)
		result := app.api.QueryNTP(server)

		var reference *ntp.ReferenceSample
		var referenceErr error
		if compare {
			ref := ntp.NewReference()
			ref.Port = strconv.Itoa(app.cfg.Port)
			ref.Timeout = app.cfg.QueryTimeout
			reference, referenceErr = ref.Query(server)
		}

		if jsonOutput {
			if err := printJSON(struct {
				*api.QueryResult
				Reference *ntp.ReferenceSample `json:"reference,omitempty"`
			}{result, reference}); err != nil {
				return err
			}
		} else {
			printQuery(result, reference, referenceErr)
		}

		if !result.Success {
			return exitError{result.Code}
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&compare, "compare", false, "cross-check against an independent SNTP implementation")
}

func printQuery(result *api.QueryResult, reference *ntp.ReferenceSample, referenceErr error) {
	if !result.Success {
		fmt.Println(ui.ErrorStyle(result.Code), result.Error)
		return
	}

	m := result.Measurement
	fmt.Println(ui.TitleStyle(m.Server), ui.HelpStyle(m.ServerIP))
	fmt.Printf("  offset     %s\n", ui.Millis(m.Offset))
	fmt.Printf("  delay      %s\n", ui.Millis(m.Delay))
	fmt.Printf("  stratum    %d (%s)\n", m.Stratum, m.RefID)
	fmt.Printf("  leap/ver   %d/%d  poll %d  precision %d\n", m.Leap, m.Version, m.Poll, m.Precision)
	fmt.Printf("  root       delay %s  dispersion %s\n", ui.Millis(m.RootDelay), ui.Millis(m.RootDispersion))
	fmt.Printf("  ref time   %s\n", ui.UnixMillis(m.RefTime))

	switch {
	case referenceErr != nil:
		fmt.Println(ui.HelpStyle("  reference: " + referenceErr.Error()))
	case reference != nil:
		fmt.Printf("  reference  offset %s  delay %s  (diff %s)\n",
			ui.Millis(reference.Offset), ui.Millis(reference.Delay), ui.Millis(m.Offset-reference.Offset))
	}
}
