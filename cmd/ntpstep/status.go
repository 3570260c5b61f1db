package main

import (
	"fmt"

	"github.com/AndrewLester/ntpstep/internal/ui"
	"github.com/spf13/cobra"
)

var permissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Report whether this process may set the clock directly",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		permission := app.api.CheckTimePermission()
		if jsonOutput {
			return printJSON(permission)
		}
		fmt.Println(ui.Status(permission.HasPermission, permission.Message), ui.HelpStyle("("+permission.Platform+")"))
		return nil
	},
}

var sidecarCmd = &cobra.Command{
	Use:   "sidecar",
	Short: "Inspect the privileged sidecar",
}

var sidecarStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the sidecar is installed and answering",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		status := app.api.CheckSidecarStatus()
		if jsonOutput {
			return printJSON(status)
		}
		fmt.Println(ui.Status(status.Installed && status.Running, status.Message))
		fmt.Printf("  installed  %t\n", status.Installed)
		fmt.Printf("  running    %t  (%s)\n", status.Running, app.cfg.Sidecar.Addr)
		return nil
	},
}

func init() {
	sidecarCmd.AddCommand(sidecarStatusCmd)
}
