package selector

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dikkadev/tachiext/pkg/github"
	"github.com/dikkadev/tachiext/pkg/locale"
	"golang.org/x/text/language"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type ExtensionItem struct {
	ext github.Extension
}

func (i ExtensionItem) Title() string {
	return fmt.Sprintf("%s (%s)", i.ext.Name, i.ext.Lang)
}

func (i ExtensionItem) Description() string {
	prefix := fmt.Sprintf("v%s | ", i.ext.VersionName)
	desc := i.ext.PackageName
	if i.ext.IsNSFW {
		desc += " | NSFW"
	}
	maxLen := 100 - len(prefix)
	if len(desc) > maxLen {
		desc = desc[:maxLen-3] + "..."
	}
	return prefix + desc
}

func (i ExtensionItem) FilterValue() string {
	return i.ext.Name + " " + i.ext.PackageName
}

// Option is a generic menu entry
type Option struct {
	Name string
	Desc string
}

func (o Option) Title() string       { return o.Name }
func (o Option) Description() string { return o.Desc }
func (o Option) FilterValue() string { return o.Name }

type model struct {
	list     list.Model
	selected list.Item
	err      error
	quitting bool
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if i := m.list.SelectedItem(); i != nil {
				m.selected = i
				return m, tea.Quit
			}
		case "ctrl+n":
			m.list.CursorDown()
		case "ctrl+p":
			m.list.CursorUp()
		case "pgdown", "ctrl+d":
			m.list.NextPage()
		case "pgup", "ctrl+u":
			m.list.PrevPage()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\nPress any key to exit\n", m.err)
	}

	if m.quitting {
		return ""
	}

	help := "\nNavigate: ↑/↓ • Page: PgUp/PgDn • Filter: / • Select: Enter • Quit: Esc/q\n"
	return m.list.View() + helpStyle.Render(help)
}

func newList(title string, items []list.Item) list.Model {
	width := 80
	height := min(20, len(items)*3+6) // title, status bar and help
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.Styles.Title = titleStyle
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetShowTitle(true)
	l.SetShowFilter(true)
	l.SetFilteringEnabled(true)
	l.KeyMap.Quit.SetEnabled(true)
	l.KeyMap.ForceQuit.SetEnabled(true)
	return l
}

func run(l list.Model) (list.Item, error) {
	prog := tea.NewProgram(model{list: l})
	finalModel, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run UI: %w", err)
	}

	if m, ok := finalModel.(model); ok && m.selected != nil {
		return m.selected, nil
	}
	return nil, nil
}

// searchExtensions performs the catalog search without any UI interaction
func searchExtensions(ctx context.Context, client github.Client, input string, preferred []language.Tag) ([]github.Extension, error) {
	exts, err := client.FindExtensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch extensions: %w", err)
	}

	// Exact package names win outright
	for _, ext := range exts {
		if ext.PackageName == input {
			return []github.Extension{ext}, nil
		}
	}

	query := strings.ToLower(input)
	var matches []github.Extension
	for _, ext := range exts {
		if strings.Contains(strings.ToLower(ext.Name), query) ||
			strings.Contains(strings.ToLower(ext.PackageName), query) {
			matches = append(matches, ext)
		}
	}

	// Narrow to the preferred languages unless that hides everything
	if len(preferred) > 0 {
		if inLang := locale.FilterExtensions(matches, preferred); len(inLang) > 0 {
			matches = inLang
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("no extensions found matching '%s'", input)
	}

	return matches, nil
}

// SelectExtension resolves input to a single catalog extension. Several matches open
// an interactive list, or pick the best language match when nonInteractive is set.
func SelectExtension(ctx context.Context, client github.Client, input string, preferred []language.Tag, nonInteractive bool) (*github.Extension, error) {
	matches, err := searchExtensions(ctx, client, input, preferred)
	if err != nil {
		return nil, err
	}

	if len(matches) == 1 {
		return &matches[0], nil
	}

	if nonInteractive {
		return locale.Best(matches, preferred)
	}

	items := make([]list.Item, len(matches))
	for i, ext := range matches {
		items[i] = ExtensionItem{ext: ext}
	}

	item, err := run(newList(fmt.Sprintf("Select an extension (found %d)", len(matches)), items))
	if err != nil {
		return nil, err
	}
	if i, ok := item.(ExtensionItem); ok {
		return &i.ext, nil
	}

	return nil, fmt.Errorf("no extension selected")
}

// SelectOption presents a menu and returns the chosen option, nil if cancelled
func SelectOption(title string, options []Option) (*Option, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("no options to select from")
	}

	items := make([]list.Item, len(options))
	for i, opt := range options {
		items[i] = opt
	}

	item, err := run(newList(title, items))
	if err != nil {
		return nil, err
	}
	if o, ok := item.(Option); ok {
		return &o, nil
	}
	return nil, nil
}
