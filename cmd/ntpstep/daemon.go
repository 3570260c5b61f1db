package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndrewLester/ntpstep/internal/daemonize"
	"github.com/AndrewLester/ntpstep/pkg/ntpsync"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const daemonName = "ntpstepd"

var (
	foreground bool
	stopDaemon bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon [server]",
	Short: "Sync periodically in the background; SIGHUP triggers an immediate sync",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := daemonize.System(daemonName)

		if stopDaemon {
			if err := d.Stop(); err != nil {
				return err
			}
			fmt.Printf("Stopped %s.\n", daemonName)
			return nil
		}

		if !foreground {
			child, err := d.Reborn()
			if err != nil {
				if errors.Is(err, daemonize.ErrRunning) {
					return fmt.Errorf("%s is already running (pidfile %s)", daemonName, d.PidFile())
				}
				return fmt.Errorf("unable to start %s: %w", daemonName, err)
			}
			if child != nil {
				fmt.Printf("Daemon process (%s, %d) started successfully.\n", daemonName, child.Pid)
				return nil
			}
			defer d.Release()
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := app.server(args)
		app.log.WithFields(logrus.Fields{
			"server":   server,
			"interval": app.cfg.SyncInterval,
			"detached": daemonize.IsChild(),
		}).Info("daemon started")

		return runDaemon(ctx, app.api.Syncer, server, app.cfg.SyncInterval, app.log)
	},
}

func init() {
	daemonCmd.Flags().BoolVar(&foreground, "foreground", false, "stay attached to the terminal")
	daemonCmd.Flags().BoolVar(&stopDaemon, "stop", false, "stop the running daemon")
}

// runDaemon syncs every interval and whenever SIGHUP arrives. Both paths
// share the syncer's single-flight guard, so a manual sync that lands while
// a periodic one is running joins it instead of stepping the clock twice.
func runDaemon(ctx context.Context, syncer *ntpsync.Syncer, server string, interval time.Duration, log logrus.FieldLogger) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	return syncLoop(ctx, syncer, server, interval, hup, log)
}

func syncLoop(ctx context.Context, syncer *ntpsync.Syncer, server string, interval time.Duration, trigger <-chan os.Signal, log logrus.FieldLogger) error {
	g, ctx := errgroup.WithContext(ctx)

	run := func(reason string) {
		outcome := syncer.Sync(server)
		entry := log.WithFields(logrus.Fields{
			"session": outcome.Session,
			"reason":  reason,
			"code":    outcome.Code,
		})
		if outcome.Success {
			entry.WithField("offset_ms", outcome.PostSyncOffset).Info("sync succeeded")
		} else {
			entry.Warn("sync failed: " + outcome.Message)
		}
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		run("startup")
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				run("interval")
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-trigger:
				run("signal")
			}
		}
	})

	err := g.Wait()
	log.Info("daemon stopped")
	return err
}
