package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextResource  key.Binding
	PrevResource  key.Binding
	NextPage      key.Binding
	PrevPage      key.Binding
	Search        key.Binding
	Filter        key.Binding
	Category      key.Binding
	Year          key.Binding
	RowsPerPage   key.Binding
	Preview       key.Binding
	Open          key.Binding
	Delete        key.Binding
	ToggleService key.Binding
	Refresh       key.Binding
	ReloadToken   key.Binding
	Back          key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextResource:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		PrevResource:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		NextPage:      key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→", "next page")),
		PrevPage:      key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "prev page")),
		Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
		Category:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category filter")),
		Year:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "year filter")),
		RowsPerPage:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "rows per page")),
		Preview:       key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "preview")),
		Open:          key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Delete:        key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		ToggleService: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "isbn/issn")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		ReloadToken:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "reload token")),
		Back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Preview, k.NextPage, k.ToggleService, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextResource, k.PrevResource, k.NextPage, k.PrevPage},
		{k.Search, k.Filter, k.Category, k.Year},
		{k.RowsPerPage, k.Refresh},
		{k.Preview, k.Open, k.Delete, k.Back},
		{k.ToggleService, k.ReloadToken, k.Help, k.Quit},
	}
}
