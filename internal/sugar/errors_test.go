package sugar

import (
	"bytes"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type quitModel struct{ err error }

func (m quitModel) Init() tea.Cmd                       { return tea.Quit }
func (m quitModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, nil }
func (m quitModel) View() string                        { return "" }
func (m quitModel) GetError() error                     { return m.err }

func run(model ErrorModel) error {
	var out bytes.Buffer
	_, err := RunProgramWithErrors(model, tea.WithInput(nil), tea.WithOutput(&out), tea.WithoutSignalHandler())
	return err
}

func TestRunProgramWithErrors(t *testing.T) {
	if err := run(quitModel{}); err != nil {
		t.Errorf("clean model returned %v", err)
	}

	want := errors.New("sync failed")
	if err := run(quitModel{err: want}); !errors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
}
