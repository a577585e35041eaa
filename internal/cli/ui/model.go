package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aben20807/exif-count/internal/cli/hooks" // Import hooks for message types
	"github.com/aben20807/exif-count/pkg/photostat"
)

// --- Constants ---

const listHeightMargin = 5 // header, progress bar, footer and padding

const (
	phaseInitializing = "Initializing..."
	phaseReading      = "Reading EXIF..."
	phaseComplete     = "Complete"
	phaseAborted      = "Aborted"
)

// --- Model Struct ---

// Model represents the state of the TUI application.
// It shows overall progress and lists every file that did not contribute to the
// counts, with the reason.
type Model struct {
	// list displays the skipped and lapsed files.
	list list.Model
	// spinner indicates background activity.
	spinner spinner.Model
	// progress renders the completed/total ratio.
	progress progress.Model
	width    int
	height   int
	// initialized tracks if the model has received initial dimensions.
	initialized bool
	// fileItems holds the internal data for each item displayed in the list.
	fileItems []listItem
	// itemMap maps file paths to their index in fileItems.
	itemMap map[string]int
	summary Summary
	// phaseMessage displays the current overall stage of the run.
	phaseMessage string
	// quitting indicates the user asked to stop (q or Ctrl+C).
	quitting bool
	// done is set once the final report arrived.
	done bool
	// listUpdatePending is set while a debounced list refresh is scheduled.
	listUpdatePending bool
	version           string
	// onQuit cancels the run when the user quits before completion.
	onQuit func()
}

// listItem represents a single file in the TUI list.
type listItem struct {
	path     string           // Relative path
	status   photostat.Status // Final processing status
	message  string           // Skip reason or lapse message
	duration time.Duration
}

// Summary holds the aggregated statistics displayed in the TUI footer.
type Summary struct {
	TotalFiles   int
	CountedCount int
	SkippedCount int
	LapsedCount  int
	StartTime    time.Time
}

func (s Summary) completed() int { return s.CountedCount + s.SkippedCount + s.LapsedCount }

// --- Bubble Tea Interface Implementations ---

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages (user input, hook events) and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	// --- Internal Bubble Tea Messages ---
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - listHeightMargin
		if listHeight < 1 {
			listHeight = 1
		}
		m.list.SetSize(m.width, listHeight)
		m.progress.Width = max(m.width-4, 10)
		m.initialized = true

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			if !m.done && m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}
		var listCmd tea.Cmd
		m.list, listCmd = m.list.Update(msg)
		cmds = append(cmds, listCmd)

	case spinner.TickMsg:
		if m.quitting || m.done {
			return m, nil
		}
		var spinnerCmd tea.Cmd
		m.spinner, spinnerCmd = m.spinner.Update(msg)
		cmds = append(cmds, spinnerCmd)

	// --- Custom Messages from Engine Hooks ---
	case hooks.RunStartMsg:
		m.summary.TotalFiles = msg.Total
		if !m.quitting {
			m.phaseMessage = phaseReading
		}

	case hooks.FileStatusUpdateMsg:
		if !isFinalStatus(msg.Status) {
			break
		}
		m.incrementSummaryCount(msg.Status)
		// Counted files are only reflected in the totals.
		if msg.Status == photostat.StatusCounted {
			break
		}
		item := listItem{path: msg.Path, status: msg.Status, message: msg.Message, duration: msg.Duration}
		if idx, ok := m.itemMap[msg.Path]; ok && idx < len(m.fileItems) {
			m.fileItems[idx] = item
		} else {
			m.fileItems = append(m.fileItems, item)
			m.itemMap[msg.Path] = len(m.fileItems) - 1
		}
		cmds = append(cmds, m.debounceListUpdate())

	case hooks.RunCompleteMsg:
		s := msg.Report.Summary
		m.summary.TotalFiles = s.TotalFiles
		m.summary.CountedCount = s.CountedCount
		m.summary.SkippedCount = s.SkippedCount
		m.summary.LapsedCount = s.LapsedCount
		m.done = true
		m.phaseMessage = phaseComplete
		if s.Aborted {
			m.phaseMessage = phaseAborted
		}
		// Hand the terminal back so the distributions can be printed.
		cmds = append(cmds, tea.Quit)

	case UpdateListMsg:
		m.listUpdatePending = false
		items := make([]list.Item, len(m.fileItems))
		for i, item := range m.fileItems {
			items[i] = item
		}
		cmds = append(cmds, m.list.SetItems(items))
	}

	return m, tea.Batch(cmds...)
}

// View renders the current state of the TUI model.
func (m *Model) View() string {
	if m.quitting && !m.done {
		return "Aborting...\n"
	}
	if !m.initialized {
		return phaseInitializing
	}

	// --- Header ---
	headerLeft := fmt.Sprintf("exif-count v%s", m.version)
	headerRight := m.phaseMessage
	if !m.done && m.phaseMessage != phaseInitializing {
		headerRight = m.spinner.View() + " " + m.phaseMessage
	}
	headerCenter := ""
	headerWidth := m.width - HeaderStyle.GetHorizontalFrameSize() - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerWidth > 0 {
		headerCenter = lipgloss.PlaceHorizontal(headerWidth, lipgloss.Center, " ")
	}
	header := HeaderStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, headerLeft, headerCenter, headerRight))

	// --- Progress ---
	percent := 0.0
	if m.summary.TotalFiles > 0 {
		percent = float64(m.summary.completed()) / float64(m.summary.TotalFiles)
	}
	progressView := m.progress.ViewAs(percent)

	// --- Footer ---
	elapsed := time.Since(m.summary.StartTime).Round(time.Millisecond)
	footerLeft := fmt.Sprintf(
		"Counted: %d | Skipped: %d | Lapsed: %d | Total: %d | Elapsed: %s",
		m.summary.CountedCount,
		m.summary.SkippedCount,
		m.summary.LapsedCount,
		m.summary.TotalFiles,
		elapsed,
	)
	footerRight := "q: quit"
	footerCenter := ""
	footerWidth := m.width - FooterStyle.GetHorizontalFrameSize() - lipgloss.Width(footerLeft) - lipgloss.Width(footerRight)
	if footerWidth > 0 {
		footerCenter = lipgloss.PlaceHorizontal(footerWidth, lipgloss.Center, " ")
	}
	footer := FooterStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, footerLeft, footerCenter, footerRight))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		progressView,
		m.list.View(),
		footer,
	)
}

// --- Helper Methods ---

// NewModel creates the initial model for the TUI. onQuit is called when the user
// quits before the run completes.
func NewModel(version string, onQuit func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorStatusProcessing)

	p := progress.New(progress.WithDefaultGradient())

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorSelectedFg).
		Background(ColorSelectedBg).
		Bold(true).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorSelectedDescFg).
		Background(ColorSelectedBg).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.
		Foreground(ColorNormalFg).Padding(0, 0, 0, 1)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.
		Foreground(ColorNormalDescFg).Padding(0, 0, 0, 1)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings() // Use our own quit logic

	if version == "" {
		version = "dev"
	}
	return Model{
		list:         l,
		spinner:      s,
		progress:     p,
		summary:      Summary{StartTime: time.Now()},
		phaseMessage: phaseInitializing,
		fileItems:    make([]listItem, 0, 64),
		itemMap:      make(map[string]int),
		version:      version,
		onQuit:       onQuit,
	}
}

// isFinalStatus checks if a status represents a terminal state for a file.
func isFinalStatus(status photostat.Status) bool {
	return status.IsFinal()
}

// incrementSummaryCount updates summary counts based on the new final status.
func (m *Model) incrementSummaryCount(status photostat.Status) {
	switch status {
	case photostat.StatusCounted:
		m.summary.CountedCount++
	case photostat.StatusSkipped:
		m.summary.SkippedCount++
	case photostat.StatusLapsed:
		m.summary.LapsedCount++
	}
}

// --- List Item Interface ---

// FilterValue implements the list.Item interface.
func (i listItem) FilterValue() string { return i.path }

// Title implements the list.Item interface.
func (i listItem) Title() string { return i.path }

// Description implements the list.Item interface.
func (i listItem) Description() string {
	var statusStyle lipgloss.Style
	var statusIcon, details string
	switch i.status {
	case photostat.StatusCounted:
		statusStyle = StatusStyleCounted
		statusIcon = "✓"
		details = formatDuration(i.duration)
	case photostat.StatusSkipped:
		statusStyle = StatusStyleSkipped
		statusIcon = "S"
		// Messages have the form "reason: details"; the reason is enough here.
		reason, _, _ := strings.Cut(i.message, ":")
		details = strings.TrimSpace(reason)
	case photostat.StatusLapsed:
		statusStyle = StatusStyleLapsed
		statusIcon = "T"
		details = i.message
	default:
		statusStyle = StatusStylePending
		statusIcon = " "
	}
	return fmt.Sprintf("%s %s", statusStyle.Render(fmt.Sprintf("[%s]", statusIcon)), details)
}

// formatDuration formats duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		if d == 0 {
			return ""
		}
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// --- Update Debouncing ---

// UpdateListMsg signals that the list component should update its items.
type UpdateListMsg struct{}

const listUpdateDebounceDuration = 50 * time.Millisecond // Update list ~20 times/sec max

// debounceListUpdate schedules a single list refresh; further calls before it fires
// are coalesced.
func (m *Model) debounceListUpdate() tea.Cmd {
	if m.listUpdatePending {
		return nil
	}
	m.listUpdatePending = true
	return tea.Tick(listUpdateDebounceDuration, func(time.Time) tea.Msg {
		return UpdateListMsg{}
	})
}

// --- Styles ---

const (
	ColorHeaderFg = lipgloss.Color("252") // Light Gray
	ColorHeaderBg = lipgloss.Color("62")  // Purple

	ColorFooterFg = lipgloss.Color("252")
	ColorFooterBg = lipgloss.Color("56") // Dark Pink/Purple

	ColorNormalFg     = lipgloss.Color("250") // Off-white
	ColorNormalDescFg = lipgloss.Color("244") // Dim gray

	ColorSelectedFg     = lipgloss.Color("255") // White
	ColorSelectedBg     = lipgloss.Color("56")  // Dark Pink/Purple
	ColorSelectedDescFg = lipgloss.Color("248") // Lighter Gray

	ColorStatusCounted    = lipgloss.Color("40")  // Green
	ColorStatusSkipped    = lipgloss.Color("214") // Orange/Yellow
	ColorStatusLapsed     = lipgloss.Color("196") // Red
	ColorStatusPending    = lipgloss.Color("244") // Dim gray
	ColorStatusProcessing = lipgloss.Color("205") // Pink (matches spinner)
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Background(ColorFooterBg).
			Padding(0, 1)

	StatusStyleCounted = lipgloss.NewStyle().Foreground(ColorStatusCounted)
	StatusStyleSkipped = lipgloss.NewStyle().Foreground(ColorStatusSkipped)
	StatusStyleLapsed  = lipgloss.NewStyle().Foreground(ColorStatusLapsed)
	StatusStylePending = lipgloss.NewStyle().Foreground(ColorStatusPending)
)
