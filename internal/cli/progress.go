package cli

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/telefetch/telefetch/internal/core/engine"
	"github.com/telefetch/telefetch/internal/core/format"
	"github.com/telefetch/telefetch/internal/core/i18n"
)

var (
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// fetchState is the shared state between the acquisition goroutine and
// the TUI. The engine reports percent plus already-humanized totals.
type fetchState struct {
	mu        sync.RWMutex
	percent   float64
	total     string
	speed     string
	eta       string
	done      bool
	err       error
	startTime time.Time
	endTime   time.Time
	finalPath string
	finalSize int64
}

func (s *fetchState) update(p engine.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.percent = p.Percent
	s.total = p.Total
	s.speed = p.Speed
	s.eta = p.ETA
}

func (s *fetchState) setDone(path string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endTime = time.Now()
	s.finalPath = path
	s.finalSize = size
	s.done = true
}

func (s *fetchState) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endTime = time.Now()
	s.err = err
	s.done = true
}

func (s *fetchState) get() (percent float64, total, speed, eta string, done bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.percent, s.total, s.speed, s.eta, s.done, s.err
}

func (s *fetchState) final() (path string, size int64, elapsed time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	end := s.endTime
	if end.IsZero() {
		end = time.Now()
	}
	return s.finalPath, s.finalSize, end.Sub(s.startTime)
}

// tickMsg triggers UI updates
type tickMsg time.Time

type fetchModel struct {
	progress progress.Model
	spinner  spinner.Model
	t        *i18n.Translations

	url   string
	state *fetchState
}

func newFetchModel(url, lang string, state *fetchState) fetchModel {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return fetchModel{
		progress: p,
		spinner:  s,
		t:        i18n.T(lang),
		url:      url,
		state:    state,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m fetchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(),
	)
}

func (m fetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case tickMsg:
		percent, _, _, _, done, err := m.state.get()
		if err != nil || done {
			return m, tea.Quit
		}

		cmds := []tea.Cmd{tickCmd()}
		if percent > 0 {
			cmds = append(cmds, m.progress.SetPercent(percent/100))
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m fetchModel) View() string {
	percent, total, speed, eta, done, err := m.state.get()

	if err != nil {
		return fmt.Sprintf("\n  %s %s: %v\n\n",
			errStyle.Render("✗"),
			m.t.Fetch.Failed,
			err,
		)
	}

	if done {
		path, size, elapsed := m.state.final()
		if absPath, err := filepath.Abs(path); err == nil {
			path = absPath
		}
		return fmt.Sprintf("\n  %s %s\n  %s: %s (%s)\n  %s: %s\n\n",
			doneStyle.Render("✓"),
			m.t.Fetch.Completed,
			m.t.Fetch.FileSaved,
			path,
			format.HumanBytes(size),
			m.t.Fetch.Elapsed,
			formatDuration(elapsed),
		)
	}

	var s string
	s += "\n"

	s += fmt.Sprintf("  %s %s: %s\n\n",
		m.spinner.View(),
		m.t.Fetch.Fetching,
		infoStyle.Render(m.url),
	)

	s += fmt.Sprintf("  %s\n\n", m.progress.View())

	if total != "" {
		s += fmt.Sprintf("  %s: %.1f%% of %s  |  %s: %s  |  %s: %s\n",
			m.t.Fetch.Progress, percent, total,
			m.t.Fetch.Speed, speed,
			m.t.Fetch.ETA, eta,
		)
	}

	s += "\n"
	s += helpStyle.Render("  Press q to cancel")
	s += "\n"

	return s
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d - m*time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d", m, s)
}
