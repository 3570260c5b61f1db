// Package daemonize detaches ntpstep processes into the background with a
// pidfile, and stops them again through that pidfile.
package daemonize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/sevlyar/go-daemon"
)

// ErrRunning is returned by Reborn when the pidfile is locked by a live daemon.
var ErrRunning = daemon.ErrWouldBlock

type Daemon struct {
	Name string
	ctx  *daemon.Context
}

// New describes a daemon called name that keeps its pidfile under runDir and
// its log under logDir. args are the arguments the child is started with.
func New(name, runDir, logDir string, args []string) *Daemon {
	return &Daemon{
		Name: name,
		ctx: &daemon.Context{
			PidFileName: filepath.Join(runDir, name+".pid"),
			PidFilePerm: 0644,
			LogFileName: filepath.Join(logDir, name+".log"),
			LogFilePerm: 0640,
			WorkDir:     "/",
			Umask:       027,
			Args:        append([]string{name}, args...),
		},
	}
}

// System uses /var/run and /var/log with the current process arguments.
func System(name string) *Daemon {
	return New(name, "/var/run", "/var/log", os.Args[1:])
}

func (d *Daemon) PidFile() string {
	return d.ctx.PidFileName
}

// IsChild reports whether this process is the detached copy.
func IsChild() bool {
	return daemon.WasReborn()
}

// Reborn starts the detached copy. The parent gets the child process; the
// child gets nil and must call Release before exiting.
func (d *Daemon) Reborn() (*os.Process, error) {
	return d.ctx.Reborn()
}

func (d *Daemon) Release() error {
	return d.ctx.Release()
}

// Stop sends SIGTERM to the process recorded in the pidfile.
func (d *Daemon) Stop() error {
	proc, err := d.ctx.Search()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s is not running", d.Name)
		}
		return fmt.Errorf("finding %s: %w", d.Name, err)
	}
	if proc == nil {
		return fmt.Errorf("%s is not running", d.Name)
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("couldn't stop %s (pid %d): %w", d.Name, proc.Pid, err)
	}
	return nil
}
