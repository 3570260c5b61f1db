// Command ntpstep-sidecar is the privileged helper. It runs as root and
// sets the clock on behalf of unprivileged ntpstep processes that ask over
// loopback UDP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/AndrewLester/ntpstep/internal/daemonize"
	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/AndrewLester/ntpstep/pkg/settime"
	"github.com/AndrewLester/ntpstep/pkg/sidecar"
	"github.com/spf13/cobra"
)

const daemonName = "ntpstep-sidecar"

var (
	addr     string
	detach   bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           daemonName,
	Short:         "Privileged helper that sets the system clock for ntpstep",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkRoot(os.Geteuid(), runtime.GOOS); err != nil {
			return err
		}

		if detach {
			d := daemonize.System(daemonName)
			child, err := d.Reborn()
			if err != nil {
				if errors.Is(err, daemonize.ErrRunning) {
					return fmt.Errorf("%s is already running", daemonName)
				}
				return err
			}
			if child != nil {
				fmt.Printf("Daemon process (%s, %d) started successfully.\n", daemonName, child.Pid)
				return nil
			}
			defer d.Release()
		}

		log := logging.New(logLevel)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.WithField("detached", daemonize.IsChild()).Debug("starting sidecar")
		server := sidecar.NewServer(addr, settime.Direct{}, log)
		err := server.ListenAndServe(ctx)
		if errors.Is(err, context.Canceled) {
			log.Info("sidecar stopped")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", sidecar.DefaultAddr, "loopback address to listen on")
	rootCmd.Flags().BoolVar(&detach, "detach", false, "run in the background with a pidfile")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
}

// checkRoot refuses to start unprivileged on unix; every request would fail.
func checkRoot(euid int, goos string) error {
	if goos == "windows" {
		return nil
	}
	if euid != 0 {
		return fmt.Errorf("%s must run as root (euid %d)", daemonName, euid)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
