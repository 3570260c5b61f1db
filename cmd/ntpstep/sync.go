package main

import (
	"fmt"
	"os"

	"github.com/AndrewLester/ntpstep/internal/sugar"
	"github.com/AndrewLester/ntpstep/internal/ui"
	"github.com/AndrewLester/ntpstep/pkg/ntpsync"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [server]",
	Short: "Sample a server, step the clock on the next whole second and verify",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		server := app.server(args)

		var outcome *ntpsync.Outcome
		if jsonOutput || !isatty.IsTerminal(os.Stdout.Fd()) {
			outcome = app.api.SyncNTPTime(server)
			if jsonOutput {
				if err := printJSON(outcome); err != nil {
					return err
				}
			} else {
				printOutcome(outcome)
			}
		} else {
			outcome, err = runSyncView(app, server)
			if err != nil {
				return err
			}
			printOutcome(outcome)
		}

		if !outcome.Success {
			return exitError{outcome.Code}
		}
		return nil
	},
}

func printOutcome(o *ntpsync.Outcome) {
	fmt.Println(ui.Status(o.Success, o.Message))
	if o.Samples == 0 {
		return
	}
	fmt.Printf("  server     %s (%s) stratum %d\n", o.Server, o.ServerIP, o.Stratum)
	fmt.Printf("  samples    %d\n", o.Samples)
	fmt.Printf("  before     %s  delay %s\n", ui.Millis(o.PreSyncOffset), ui.Millis(o.Delay))
	if o.Success {
		fmt.Printf("  after      %s\n", ui.Millis(o.PostSyncOffset))
	}
	if o.Code != "" {
		fmt.Printf("  code       %s\n", ui.ErrorStyle(o.Code))
	}
}

const (
	padding  = 10
	maxWidth = 80
)

type syncProgressMessage ntpsync.Progress
type syncDoneMessage *ntpsync.Outcome

type syncModel struct {
	progress progress.Model
	server   string
	steps    int
	done     int
	stage    ntpsync.Stage
	failures int

	updates  <-chan ntpsync.Progress
	finished <-chan *ntpsync.Outcome
	outcome  *ntpsync.Outcome
	err      error
}

// runSyncView runs the sync in the background and shows its progress.
func runSyncView(app *application, server string) (*ntpsync.Outcome, error) {
	updates := make(chan ntpsync.Progress, 16)
	finished := make(chan *ntpsync.Outcome, 1)

	app.api.Syncer.Progress = func(p ntpsync.Progress) {
		select {
		case updates <- p:
		default:
		}
	}
	go func() { finished <- app.api.SyncNTPTime(server) }()

	m := syncModel{
		progress: progress.New(progress.WithScaledGradient("#68b1b1", "#6ea4ff")),
		server:   server,
		steps:    app.api.Syncer.Samples + 3,
		updates:  updates,
		finished: finished,
	}

	final, err := sugar.RunProgramWithErrors(m)
	if err != nil {
		return nil, err
	}
	return final.(syncModel).outcome, nil
}

func (m syncModel) listen() tea.Cmd {
	return func() tea.Msg {
		return syncProgressMessage(<-m.updates)
	}
}

func (m syncModel) wait() tea.Cmd {
	return func() tea.Msg {
		return syncDoneMessage(<-m.finished)
	}
}

func (m syncModel) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.wait())
}

func (m syncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.err = sugar.ErrInterrupted
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}
		return m, nil
	case syncProgressMessage:
		if msg.Stage != ntpsync.StageDone {
			m.done++
		}
		m.stage = msg.Stage
		if msg.Err != nil && msg.Stage == ntpsync.StageSample {
			m.failures++
		}
		return m, m.listen()
	case syncDoneMessage:
		m.outcome = msg
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m syncModel) View() (s string) {
	if m.err != nil || m.outcome != nil {
		return
	}

	percentage := float64(m.done) / float64(m.steps)
	if percentage > 1 {
		percentage = 1
	}

	s += ui.TitleStyle("ntpstep - Sync "+m.server) + "\n\n"
	s += m.progress.ViewAs(percentage) + "\n"
	if m.stage != "" {
		s += ui.HelpStyle(fmt.Sprintf("%s (%d failed samples)", m.stage, m.failures)) + "\n"
	}
	s += "\n" + ui.HelpStyle("q: exit\n")
	return
}

func (m syncModel) GetError() error {
	return m.err
}
