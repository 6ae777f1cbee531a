package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	tea "charm.land/bubbletea/v2"

	"go.jacobcolvin.com/ulog"
	"go.jacobcolvin.com/ulog/log"
)

type tailOptions struct {
	interval time.Duration
}

func newTailCmd(a *app) *cobra.Command {
	opts := &tailOptions{}

	cmd := &cobra.Command{
		Use:   "tail [flags]",
		Short: "Watch generated messages live in the terminal",
		Long: `tail replaces the console subscriber with a channel publisher, emits a demo
message every --interval at rotating levels, and shows the most recent
messages that pass --log-level. Press space to pause, c to clear, q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.tail(opts)
		},
	}

	cmd.Flags().DurationVar(&opts.interval, "interval", 500*time.Millisecond, "delay between demo messages")

	return cmd
}

func (a *app) tail(opts *tailOptions) error {
	if opts.interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", opts.interval)
	}

	level, err := ulog.ParseLevel(a.cfg.Level)
	if err != nil {
		return fmt.Errorf("%w: %w", log.ErrInvalidArgument, err)
	}

	// Console output would tear the alternate screen, so start from an
	// empty table.
	a.logger.Init()
	a.logger.SetQuiet(a.cfg.Quiet)

	pub := log.NewPublisher()
	defer pub.Close() //nolint:errcheck // Always nil.

	err = a.logger.Subscribe(pub, level)
	if err != nil {
		return fmt.Errorf("subscribing publisher: %w", err)
	}

	cols, rows := 80, 24

	if f, ok := a.stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w, h, sizeErr := term.GetSize(int(f.Fd()))
		if sizeErr == nil {
			cols, rows = w, h
		}
	}

	m := newTailModel(a.logger, pub.Subscribe(), opts.interval, cols, rows)

	_, err = tea.NewProgram(m, tea.WithOutput(a.stdout)).Run()
	if err != nil {
		return fmt.Errorf("running tail: %w", err)
	}

	return nil
}

// entryMsg carries one entry received from the publisher.
type entryMsg log.Entry

// streamClosedMsg signals that the publisher closed the subscription.
type streamClosedMsg struct{}

// demoTickMsg signals that it is time to emit the next demo message.
type demoTickMsg struct{}

var demoMessages = []string{
	"polling sensor %d",
	"cache miss on key %d",
	"request %d served",
	"retrying upload %d",
	"write %d failed",
	"watchdog fired after tick %d",
}

// tailModel is the bubbletea model for the tail command.
type tailModel struct {
	logger   *ulog.Logger
	sub      *log.Subscription
	entries  []log.Entry
	buf      strings.Builder
	interval time.Duration
	seq      int
	cols     int
	rows     int
	paused   bool
}

func newTailModel(logger *ulog.Logger, sub *log.Subscription, interval time.Duration, cols, rows int) *tailModel {
	return &tailModel{
		logger:   logger,
		sub:      sub,
		interval: interval,
		cols:     cols,
		rows:     rows,
	}
}

// Init starts the demo ticker and the first receive.
func (m *tailModel) Init() tea.Cmd {
	return tea.Batch(m.waitEntry(), m.tick())
}

// Update handles entries, ticks, resizes, and keys.
func (m *tailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.sub.Close()

			return m, tea.Quit
		case "space":
			m.paused = !m.paused
		case "c":
			m.entries = m.entries[:0]
		}

	case tea.WindowSizeMsg:
		m.cols = msg.Width
		m.rows = msg.Height
		m.trim()

	case demoTickMsg:
		if !m.paused {
			m.emit()
		}

		return m, m.tick()

	case entryMsg:
		m.entries = append(m.entries, log.Entry(msg))
		m.trim()

		return m, m.waitEntry()

	case streamClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

// View renders a status line followed by the most recent entries.
func (m *tailModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true

	return v
}

func (m *tailModel) render() string {
	m.buf.Reset()

	state := "live"
	if m.paused {
		state = "paused"
	}

	m.buf.WriteString(clip(fmt.Sprintf("ulog tail [%s] %d shown  space pause  c clear  q quit", state, len(m.entries)), m.cols))
	m.buf.WriteByte('\n')

	for _, e := range m.entries {
		line := fmt.Sprintf("%s %-8s %s", e.Time.Format("15:04:05.000"), ulog.LevelName(e.Level), e.Message)
		m.buf.WriteString(clip(line, m.cols))
		m.buf.WriteByte('\n')
	}

	return m.buf.String()
}

// emit dispatches the next demo message, cycling through every level.
func (m *tailModel) emit() {
	levels := ulog.Levels()
	level := levels[m.seq%len(levels)]
	format := demoMessages[m.seq%len(demoMessages)]

	m.logger.Notify(level, ulog.Source{}, format, m.seq)
	m.seq++
}

// trim drops the oldest entries that no longer fit below the status line.
func (m *tailModel) trim() {
	limit := max(m.rows-1, 1)
	if over := len(m.entries) - limit; over > 0 {
		m.entries = append(m.entries[:0], m.entries[over:]...)
	}
}

func (m *tailModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return demoTickMsg{}
	})
}

// waitEntry returns a tea.Cmd that blocks until the next entry arrives.
func (m *tailModel) waitEntry() tea.Cmd {
	return func() tea.Msg {
		e, open := <-m.sub.C()
		if !open {
			return streamClosedMsg{}
		}

		return entryMsg(e)
	}
}

// clip cuts s to at most width terminal cells without splitting a rune.
func clip(s string, width int) string {
	if width <= 0 {
		return s
	}

	return ansi.Truncate(s, width, "")
}
