package wizard

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/tui/styles"
)

// SearchType selects which song fields a query matches.
type SearchType int

const (
	SearchAll SearchType = iota
	SearchArtists
	SearchMoods
)

var searchTabs = []string{"All", "Artists", "Moods"}

// SearchFunc is a function that performs a search.
type SearchFunc func(query string, searchType SearchType) ([]core.Song, error)

// CatalogSearch searches an in-memory catalog. SearchAll returns the
// matches followed by suggestions not already listed.
func CatalogSearch(store *catalog.Store) SearchFunc {
	return func(query string, searchType SearchType) ([]core.Song, error) {
		switch searchType {
		case SearchArtists:
			return store.ByArtist(query), nil
		case SearchMoods:
			return store.ByGenre(query), nil
		}
		res := store.Search(query)
		out := res.Results
		for _, s := range res.Suggestions {
			if core.IndexOf(out, s.ID) < 0 {
				out = append(out, s)
			}
		}
		return out, nil
	}
}

// SearchModel is the bubbletea model for the song picker.
type SearchModel struct {
	input      textinput.Model
	results    []core.Song
	cursor     int
	searchType SearchType
	searchFunc SearchFunc
	selected   *core.Song
	err        error
	debounce   time.Duration
	lastQuery  string
	width      int
	height     int
}

// NewSearchModel creates a new song picker model.
func NewSearchModel(searchFunc SearchFunc) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Search songs, artists, moods..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	return SearchModel{
		input:      ti,
		searchFunc: searchFunc,
		debounce:   200 * time.Millisecond,
		searchType: SearchAll,
		width:      80,
		height:     20,
	}
}

// Init initializes the model.
func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

type debounceMsg struct {
	query string
}

type searchResultsMsg struct {
	results []core.Song
	err     error
}

// Update handles messages.
func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.cursor < len(m.results) {
				song := m.results[m.cursor]
				m.selected = &song
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case "tab":
			m.searchType = (m.searchType + 1) % SearchType(len(searchTabs))
			return m, m.doSearch(m.input.Value())

		case "shift+tab":
			m.searchType = (m.searchType + SearchType(len(searchTabs)) - 1) % SearchType(len(searchTabs))
			return m, m.doSearch(m.input.Value())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4

	case debounceMsg:
		if msg.query == m.input.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			return m, m.doSearch(msg.query)
		}
		return m, nil

	case searchResultsMsg:
		m.results = msg.results
		m.err = msg.err
		m.cursor = 0
		return m, nil
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	if m.input.Value() != m.lastQuery {
		query := m.input.Value()
		cmds = append(cmds, tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return debounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m SearchModel) doSearch(query string) tea.Cmd {
	searchType := m.searchType
	return func() tea.Msg {
		if strings.TrimSpace(query) == "" {
			return searchResultsMsg{}
		}
		results, err := m.searchFunc(query, searchType)
		return searchResultsMsg{results: results, err: err}
	}
}

// View renders the model.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Find a song"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, tab := range searchTabs {
		if SearchType(i) == m.searchType {
			b.WriteString(styles.Selected.Render(" " + tab + " "))
		} else {
			b.WriteString(styles.Muted.Render(" " + tab + " "))
		}
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorText.Render("Error: " + m.err.Error()))
	case len(m.results) == 0 && m.input.Value() != "":
		b.WriteString("No songs found")
	default:
		maxResults := max(m.height-10, 5)
		for i, song := range m.results {
			if i >= maxResults {
				b.WriteString(styles.Dim.Render("  ...and more"))
				break
			}
			line := song.Name + " " + styles.Muted.Render(song.Artist)
			if i == m.cursor {
				b.WriteString(styles.Selected.Render("▸ " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("↑/↓ navigate • tab filter • enter play • esc quit"))
	return b.String()
}

// Selected returns the selected song, or nil if none.
func (m SearchModel) Selected() *core.Song {
	return m.selected
}

// RunSearch runs the song picker and returns the selected song.
func RunSearch(searchFunc SearchFunc) (*core.Song, error) {
	p := tea.NewProgram(NewSearchModel(searchFunc), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(SearchModel).Selected(), nil
}
