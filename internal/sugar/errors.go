package sugar

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is what models report when the user quits before the work finished.
var ErrInterrupted = errors.New("interrupted")

// ErrorModel is a tea.Model that can finish with an error of its own.
type ErrorModel interface {
	tea.Model
	GetError() error
}

// RunProgramWithErrors runs model to completion. Bubble Tea errors take
// precedence over the model's own error.
func RunProgramWithErrors(model ErrorModel, opts ...tea.ProgramOption) (tea.Model, error) {
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return final, err
	}
	if errorModel, ok := final.(ErrorModel); ok {
		return final, errorModel.GetError()
	}
	return final, nil
}
