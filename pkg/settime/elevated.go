package settime

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// exitCanceled is what the elevation script exits with when the UAC prompt
// is declined (ERROR_CANCELLED).
const exitCanceled = 1223

// Elevated re-runs Set-Date through a UAC prompt for every call and waits
// for the elevated child to finish. Success is judged by exit status only.
type Elevated struct {
	Timeout time.Duration

	// Command builds the process for script; tests swap in a stand-in shell.
	Command func(ctx context.Context, script string) *exec.Cmd
}

func NewElevated() *Elevated {
	return &Elevated{Timeout: 2 * time.Minute, Command: powershell}
}

func powershell(ctx context.Context, script string) *exec.Cmd {
	return exec.CommandContext(ctx, "powershell.exe", "-NoProfile", "-NonInteractive", "-Command", script)
}

// elevationScript sets the clock from an elevated child and forwards its exit code.
func elevationScript(unixMs float64) string {
	ms := strconv.FormatInt(int64(unixMs), 10)
	inner := "Set-Date -Date ([DateTimeOffset]::FromUnixTimeMilliseconds(" + ms + ").LocalDateTime) | Out-Null"
	return "try { " +
		"$p = Start-Process -FilePath powershell.exe -Verb RunAs -Wait -PassThru -WindowStyle Hidden " +
		"-ArgumentList '-NoProfile','-Command','" + inner + "'; " +
		"exit $p.ExitCode " +
		"} catch { exit " + strconv.Itoa(exitCanceled) + " }"
}

func (e *Elevated) SetTime(unixMs float64) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.Timeout)
	defer cancel()

	output, err := e.Command(ctx, elevationScript(unixMs)).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.ExitCode() == exitCanceled {
				return "", newError(CodeUserCanceled, "elevation prompt was declined")
			}
			return "", newError(CodeExecError, "elevated Set-Date exited with %d: %s", exitErr.ExitCode(), output)
		}
		return "", &Error{Code: CodeExecError, Err: fmt.Errorf("run elevation: %w", err)}
	}
	return "system time set through an elevated prompt", nil
}
