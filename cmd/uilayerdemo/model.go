package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 2)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type binding struct {
	action func(*app) string
	key    string
	help   string
}

var bindings = []binding{
	{key: `a`, help: `add player`, action: (*app).addPlayer},
	{key: `r`, help: `remove player`, action: (*app).removePlayer},
	{key: `R`, help: `refresh player`, action: (*app).readdPlayer},
	{key: `d`, help: `destroy player`, action: (*app).destroyPlayer},
	{key: `tab`, help: `next player`, action: (*app).cyclePlayer},
	{key: `c`, help: `next class`, action: (*app).cycleClass},
	{key: `l`, help: `next layer`, action: (*app).cycleLayer},
	{key: `p`, help: `push`, action: (*app).pushAction},
	{key: `P`, help: `push (high priority)`, action: (*app).pushStreamed},
	{key: `s`, help: `push (blocking)`, action: (*app).pushSync},
	{key: `w`, help: `create widget`, action: (*app).createWidget},
	{key: `x`, help: `cancel pushes`, action: (*app).cancelPushes},
	{key: `o`, help: `pop`, action: (*app).pop},
	{key: `u`, help: `toggle suspend`, action: (*app).toggleSuspend},
	{key: `i`, help: `toggle input`, action: (*app).toggleInput},
	{key: `m`, help: `switch manager`, action: (*app).switchManager},
	{key: `n`, help: `pending`, action: (*app).pending},
}

type model struct {
	app   *app
	frame frameMsg
}

func (m model) Init() tea.Cmd {
	return m.do((*app).addPlayer)
}

// do runs action on the loop, off the bubbletea goroutine.
func (m model) do(action func(*app) string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		return a.run(func() string { return action(a) })
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		// async frames may arrive out of order
		if msg.seq < m.frame.seq {
			return m, nil
		}
		if msg.status == `` {
			msg.status = m.frame.status
		}
		m.frame = msg
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == `q` || key == `ctrl+c` {
			return m, tea.Quit
		}
		for _, b := range bindings {
			if b.key == key {
				return m, m.do(b.action)
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	help := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		help = append(help, b.key+` `+b.help)
	}
	help = append(help, `q quit`)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(`uilayer demo`),
		``,
		m.frame.view,
		``,
		statusStyle.Render(m.frame.status),
		footerStyle.Render(strings.Join(help, `  `)),
	)
}
