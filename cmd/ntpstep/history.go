package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AndrewLester/ntpstep/internal/history"
	"github.com/AndrewLester/ntpstep/internal/ui"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sync sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if app.history == nil {
			return errors.New("history is disabled; set history.db_path in the config file")
		}

		entries, err := app.history.Recent(historyLimit)
		if err != nil {
			return err
		}
		servers, err := app.history.Servers()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(struct {
				Sessions []history.Entry `json:"sessions"`
				Servers  map[string]int  `json:"servers"`
			}{entries, servers})
		}

		_, err = tea.NewProgram(historyModel{table: setupTable(entries), servers: servers}).Run()
		return err
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of sessions to show")
}

type historyModel struct {
	table   table.Model
	servers map[string]int
}

func (m historyModel) Init() tea.Cmd {
	return nil
}

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if m.table.Focused() {
				m.table.Blur()
			} else {
				m.table.Focus()
			}
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m historyModel) View() (s string) {
	s += ui.TitleStyle("ntpstep - History") + "\n\n"
	s += ui.BaseStyle.Render(m.table.View()) + "\n"
	if footer := serversFooter(m.servers); footer != "" {
		s += ui.HelpStyle(footer) + "\n"
	}
	s += "\n" + ui.HelpStyle("q: exit\n")
	return
}

// serversFooter lists sessions per server, busiest first.
func serversFooter(servers map[string]int) string {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if servers[names[i]] != servers[names[j]] {
			return servers[names[i]] > servers[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %d", name, servers[name])
	}
	return strings.Join(parts, "  ")
}

func historyRows(entries []history.Entry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		result := "ok"
		if !e.Success {
			result = e.Code
		}
		rows = append(rows, table.Row{
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Server,
			ui.Millis(e.Offset),
			ui.Millis(e.Delay),
			ui.Millis(e.PostSyncOffset),
			strconv.Itoa(e.Samples),
			result,
		})
	}
	return rows
}

func setupTable(entries []history.Entry) table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 19},
		{Title: "Server", Width: 20},
		{Title: "Offset", Width: 12},
		{Title: "Delay", Width: 12},
		{Title: "After", Width: 12},
		{Title: "N", Width: 3},
		{Title: "Result", Width: 22},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(historyRows(entries)),
		table.WithFocused(true),
		table.WithHeight(min(len(entries)+1, 15)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}
