package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/euphony/internal/audio"
	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/history"
	"github.com/tessro/euphony/internal/library"
	"github.com/tessro/euphony/internal/session"
	"github.com/tessro/euphony/internal/tui/components"
	"github.com/tessro/euphony/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelForYou
	PanelLibrary
	PanelHistory
)

const panelCount = 4

// SearchType selects which catalog fields the search overlay matches.
type SearchType int

const (
	SearchAll SearchType = iota
	SearchArtists
	SearchGenres
)

var searchTabs = []string{"All", "Artists", "Genres"}

const (
	searchDebounce = 150 * time.Millisecond
	maxResults     = 12
	seekStep       = 10
	volumeStep     = 0.05
)

// App holds the collaborators the dashboard drives.
type App struct {
	Session     *session.Session
	Catalog     *catalog.Store
	Library     *library.Store
	History     *history.Tracker
	RefreshRate time.Duration
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	// Snapshots refreshed on every tick
	state     core.PlaybackState
	recs      []core.Song
	recent    []core.Song
	playlists []core.Playlist
	liked     []core.Song

	nowPlaying    *components.NowPlaying
	forYou        *components.SongList
	playlistsView *components.Playlists
	historyView   *components.History

	showHelp bool

	// Search state
	showSearch    bool
	searchInput   textinput.Model
	searchResults []core.Song
	suggestions   []core.Song
	searchCursor  int
	searchType    SearchType
	lastQuery     string

	// Error handling
	lastError   error
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Search songs, artists, albums, genres..."
	ti.CharLimit = 100
	ti.Width = 50

	m := Model{
		app:           app,
		focusedPanel:  PanelNowPlaying,
		nowPlaying:    components.NewNowPlaying(),
		forYou:        components.NewSongList("For You", "Play something to get recommendations"),
		playlistsView: components.NewPlaylists(),
		historyView:   components.NewHistory(),
		searchInput:   ti,
	}
	m.refresh()
	return m
}

// Messages
type tickMsg time.Time
type errMsg struct{ err error }
type actionDoneMsg struct{}
type searchDebounceMsg struct{ query string }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.RefreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh copies the current session, history and library state.
func (m *Model) refresh() {
	m.state = m.app.Session.State()
	m.recs = m.app.Session.Recommendations()
	m.recent = m.app.History.RecentlyPlayed()
	m.playlists = m.app.Library.Playlists()
	m.liked = m.app.Library.Liked()
}

// act runs a session or library action off the UI goroutine.
func act(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := fn(ctx); err != nil && !errors.IsBlocked(err) {
			return errMsg{err}
		}
		return actionDoneMsg{}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Any key counts as the gesture that unblocks audio.
		m.app.Session.Interact(audio.InputKey)
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			m.app.Session.Interact(audio.InputPointer)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.refresh()
		return m, m.tick()

	case actionDoneMsg:
		m.refresh()
		return m, nil

	case errMsg:
		m.lastError = msg.err
		m.errorExpiry = time.Now().Add(5 * time.Second)
		m.refresh()
		return m, nil

	case searchDebounceMsg:
		if msg.query == m.searchInput.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.runSearch()
		}
		return m, nil
	}

	if m.showSearch {
		var inputCmd tea.Cmd
		m.searchInput, inputCmd = m.searchInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	if m.showSearch {
		return m.handleSearchKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.showSearch = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.searchResults = nil
		m.suggestions = nil
		m.searchCursor = 0
		m.searchType = SearchAll
		m.lastQuery = ""
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	s := m.app.Session
	switch msg.String() {
	case " ":
		return m, m.togglePlayPause()
	case "n":
		return m, act(s.Next)
	case "p":
		return m, act(s.Previous)
	case "right":
		progress := m.state.Progress
		return m, act(func(ctx context.Context) error { return s.Seek(ctx, progress+seekStep) })
	case "left":
		progress := m.state.Progress
		return m, act(func(ctx context.Context) error { return s.Seek(ctx, progress-seekStep) })
	case "+", "=":
		vol := m.state.Volume
		return m, act(func(ctx context.Context) error { return s.SetVolume(ctx, vol+volumeStep) })
	case "-":
		vol := m.state.Volume
		return m, act(func(ctx context.Context) error { return s.SetVolume(ctx, vol-volumeStep) })
	case "s":
		s.ToggleShuffle()
		m.refresh()
		return m, nil
	case "r":
		s.ToggleRepeat()
		m.refresh()
		return m, nil
	case "l":
		return m, m.toggleLikeCurrent()
	case "x":
		return m, act(s.Stop)
	}

	switch m.focusedPanel {
	case PanelForYou:
		switch msg.String() {
		case "j", "down":
			m.forYou.SelectNext(len(m.recs))
		case "k", "up":
			m.forYou.SelectPrev()
		case "enter":
			if i := m.forYou.Selected(); i < len(m.recs) {
				return m, m.play(m.recs[i])
			}
		}
	case PanelLibrary:
		switch msg.String() {
		case "j", "down":
			m.playlistsView.SelectNext(len(m.playlists))
		case "k", "up":
			m.playlistsView.SelectPrev()
		case "enter":
			if i := m.playlistsView.Selected(); i < len(m.playlists) && len(m.playlists[i].Songs) > 0 {
				return m, m.play(m.playlists[i].Songs[0])
			}
		}
	}

	return m, nil
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showSearch = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		if song, ok := m.selectedResult(); ok {
			m.showSearch = false
			m.searchInput.Blur()
			return m, m.play(song)
		}
		return m, nil

	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.searchCursor < min(len(m.searchResults), maxResults)-1 {
			m.searchCursor++
		}
		return m, nil

	case "ctrl+t":
		m.searchType = (m.searchType + 1) % SearchType(len(searchTabs))
		m.runSearch()
		return m, nil

	case "ctrl+f":
		if song, ok := m.selectedResult(); ok {
			return m, m.toggleLike(song)
		}
		return m, nil

	case "ctrl+a":
		if song, ok := m.selectedResult(); ok {
			lib := m.app.Library
			return m, act(func(ctx context.Context) error { return lib.AddToLibrary(ctx, song) })
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	cmds = append(cmds, inputCmd)

	if query := m.searchInput.Value(); query != m.lastQuery {
		cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

// runSearch queries the in-memory catalog for the current input.
func (m *Model) runSearch() {
	query := strings.TrimSpace(m.searchInput.Value())
	m.searchCursor = 0
	m.suggestions = nil

	switch {
	case query == "":
		m.searchResults = nil
	case m.searchType == SearchArtists:
		m.searchResults = m.app.Catalog.ByArtist(query)
	case m.searchType == SearchGenres:
		m.searchResults = m.app.Catalog.ByGenre(query)
	default:
		res := m.app.Catalog.Search(query)
		m.searchResults = res.Results
		m.suggestions = res.Suggestions
	}
}

func (m Model) selectedResult() (core.Song, bool) {
	if m.searchCursor < len(m.searchResults) {
		return m.searchResults[m.searchCursor], true
	}
	return core.Song{}, false
}

func (m Model) play(song core.Song) tea.Cmd {
	s := m.app.Session
	return act(func(ctx context.Context) error { return s.Play(ctx, song) })
}

func (m Model) togglePlayPause() tea.Cmd {
	s := m.app.Session
	switch {
	case m.state.IsPlaying:
		return act(s.Pause)
	case m.state.HasSong():
		return act(s.Resume)
	default:
		return act(s.Next)
	}
}

func (m Model) toggleLikeCurrent() tea.Cmd {
	if !m.state.HasSong() {
		return nil
	}
	return m.toggleLike(*m.state.Song)
}

func (m Model) toggleLike(song core.Song) tea.Cmd {
	lib := m.app.Library
	return act(func(ctx context.Context) error {
		_, err := lib.ToggleLike(ctx, song)
		return err
	})
}

func (m Model) currentID() string {
	if m.state.HasSong() {
		return m.state.Song.ID
	}
	return ""
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showSearch {
		return m.renderSearch()
	}

	// Left: Now Playing over For You. Right: Library over Recently Played.
	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 2

	liked := m.app.Library.IsLiked(m.currentID())
	nowPlaying := m.nowPlaying.Render(m.state, liked, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	forYou := m.forYou.Render(m.recs, m.currentID(), leftWidth-2, bottomHeight-2, m.focusedPanel == PanelForYou)
	library := m.playlistsView.Render(m.playlists, len(m.liked), rightWidth-2, topHeight-2, m.focusedPanel == PanelLibrary)
	recent := m.historyView.Render(m.recent, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, forYou)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, library, recent)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:search  space:play/pause  n/p:next/prev  ←/→:seek  s:shuffle  r:repeat  l:like")

	if m.lastError != nil {
		status = styles.ErrorText.Render(errors.Format(m.lastError))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Euphony - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Search
  Tab          Next panel
  Shift+Tab    Previous panel

  Playback
  ────────
  Space        Play/Pause
  n            Next song
  p            Previous song (restart if past 3s)
  ←/→          Seek 10s
  +/=          Volume up
  -            Volume down
  s            Toggle shuffle
  r            Toggle repeat
  l            Like/unlike current song
  x            Stop

  For You / Library
  ─────────────────
  j/↓          Select next
  k/↑          Select previous
  Enter        Play selected

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderSearch() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Search"))
	b.WriteString("\n\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	activeTabStyle := lipgloss.NewStyle().Padding(0, 1).Background(styles.Primary).Foreground(lipgloss.Color("0"))
	tabStyle := lipgloss.NewStyle().Padding(0, 1).Foreground(styles.TextMuted)
	for i, tab := range searchTabs {
		if SearchType(i) == m.searchType {
			b.WriteString(activeTabStyle.Render(tab))
		} else {
			b.WriteString(tabStyle.Render(tab))
		}
	}
	b.WriteString("\n\n")

	if len(m.suggestions) > 0 {
		names := make([]string, len(m.suggestions))
		for i, s := range m.suggestions {
			names[i] = s.Name
		}
		b.WriteString(styles.Dim.Render("Suggestions: " + strings.Join(names, ", ")))
		b.WriteString("\n\n")
	}

	switch {
	case len(m.searchResults) == 0 && m.lastQuery != "":
		b.WriteString(styles.Subtitle.Render("No results found"))
	default:
		for i, song := range m.searchResults {
			if i >= maxResults {
				b.WriteString(styles.Subtitle.Render(fmt.Sprintf("  ...and %d more", len(m.searchResults)-maxResults)))
				break
			}

			line := song.Name + " " + styles.Subtitle.Render(song.Artist+" · "+song.Genre)
			if m.app.Library.IsLiked(song.ID) {
				line += " " + styles.Liked.Render("♥")
			}
			if i == m.searchCursor {
				b.WriteString(styles.Selected.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("Ctrl+t:filter  ↑/↓:nav  Enter:play  Ctrl+f:like  Ctrl+a:add to library  Esc:close"))

	content := lipgloss.NewStyle().
		Width(70).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI application
func Run(app *App, theme string) error {
	styles.ApplyTheme(theme)
	if app.RefreshRate <= 0 {
		app.RefreshRate = 250 * time.Millisecond
	}

	p := tea.NewProgram(NewModel(app), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
