package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/notify"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/querycache"
)

// toastDuration is how long a notification stays in the header.
const toastDuration = 4 * time.Second

// Model is the Bubbletea model for the dashboard TUI
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	console *mobcashgo.Console

	storeEvents <-chan querycache.Event
	unsubStore  func()
	notes       notify.Subscriber
	unsubNotes  func()

	active  Tab
	states  map[Tab]*listState
	current view

	table     table.Model
	spinner   spinner.Model
	search    textinput.Model
	searching bool

	dialog *rechargeDialog

	toast    *notify.Notification
	flash    string
	showHelp bool

	width  int
	height int
}

// Messages
type refreshMsg struct{}
type storeEventMsg querycache.Event
type noteMsg notify.Notification
type toastExpiredMsg struct{ id string }

// New creates a dashboard over console. The model subscribes to the cache and
// the notification feed until it quits.
func New(ctx context.Context, console *mobcashgo.Console) Model {
	ctx, cancel := context.WithCancel(ctx)

	events, unsubStore := console.Store.Subscribe()
	notes, unsubNotes := console.Notifier.Subscribe(notify.Filter{})

	t := table.New(table.WithFocused(true), table.WithHeight(10))
	t.SetStyles(tableStyles())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	search := textinput.New()
	search.Placeholder = "nom, email, référence..."
	search.Prompt = "/ "
	search.CharLimit = 100

	return Model{
		ctx:         ctx,
		cancel:      cancel,
		console:     console,
		storeEvents: events,
		unsubStore:  unsubStore,
		notes:       notes,
		unsubNotes:  unsubNotes,
		active:      TabUsers,
		states: map[Tab]*listState{
			TabUsers:     {page: 1},
			TabRecharges: {page: 1},
			TabPlatforms: {page: 1},
		},
		table:   t,
		spinner: sp,
		search:  search,
	}
}

// Run shows the dashboard until the operator quits.
func Run(ctx context.Context, console *mobcashgo.Console) error {
	m := New(ctx, console)
	defer m.stop()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return refreshMsg{} },
		m.waitStore(),
		m.waitNote(),
		m.spinner.Tick,
	)
}

func (m Model) stop() {
	m.cancel()
	m.unsubStore()
	m.unsubNotes()
}

func (m Model) waitStore() tea.Cmd {
	ch := m.storeEvents
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return storeEventMsg(ev)
	}
}

func (m Model) waitNote() tea.Cmd {
	ch := m.notes
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noteMsg(n)
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-10, 3))
		m.table.SetWidth(msg.Width - 2)
		return m, nil

	case refreshMsg:
		m.reload()
		return m, nil

	case storeEventMsg:
		if msg.Key.Resource == m.active.resource() {
			m.reload()
		}
		return m, m.waitStore()

	case noteMsg:
		note := notify.Notification(msg)
		m.toast = &note
		id := note.ID
		return m, tea.Batch(
			m.waitNote(),
			tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} }),
		)

	case toastExpiredMsg:
		if m.toast != nil && m.toast.ID == msg.id {
			m.toast = nil
		}
		return m, nil

	case attachDoneMsg:
		if m.dialog != nil {
			m.dialog.attachDone(msg)
		}
		return m, nil

	case submitDoneMsg:
		if m.dialog != nil && m.dialog.submitDone(msg) {
			m.dialog = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.stop()
		return m, tea.Quit
	}

	if m.dialog != nil {
		cmd, closed := m.dialog.update(m.ctx, msg)
		if closed {
			m.dialog = nil
		}
		return m, cmd
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	m.flash = ""
	state := m.states[m.active]

	switch msg.String() {
	case "q":
		m.stop()
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "esc":
		m.showHelp = false
		return m, nil

	case "1", "2", "3":
		m.switchTab(tabs[int(msg.String()[0]-'1')])
		return m, nil

	case "tab":
		m.switchTab(tabs[(int(m.active)+1)%len(tabs)])
		return m, nil

	case "/":
		m.searching = true
		m.search.SetValue(state.search)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case "n":
		if m.current.hasNext {
			state.page++
			m.table.SetCursor(0)
			m.reload()
		}
		return m, nil

	case "p":
		if m.current.hasPrev && state.page > 1 {
			state.page--
			m.table.SetCursor(0)
			m.reload()
		}
		return m, nil

	case "r":
		m.console.Store.Invalidate(m.active.resource())
		m.reload()
		return m, nil

	case "e":
		if m.active == TabPlatforms {
			state.enable = nextEnableFilter(state.enable)
			state.page = 1
			m.table.SetCursor(0)
			m.reload()
		}
		return m, nil

	case "c":
		if m.active != TabRecharges {
			m.switchTab(TabRecharges)
		}
		m.dialog = newRechargeDialog(m.console.NewRechargeForm())
		return m, textinput.Blink

	case "y":
		m.copySelected()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		state := m.states[m.active]
		state.search = strings.TrimSpace(m.search.Value())
		state.page = 1
		m.searching = false
		m.search.Blur()
		m.table.SetCursor(0)
		m.reload()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) switchTab(t Tab) {
	if t == m.active {
		return
	}
	m.active = t
	m.table.SetCursor(0)
	m.reload()
}

// reload reads the active tab again and rebuilds the table.
func (m *Model) reload() {
	v := loadView(m.ctx, m.console, m.active, *m.states[m.active])

	// rows must never outnumber the columns they are rendered with
	m.table.SetRows(nil)
	m.table.SetColumns(v.columns)
	m.table.SetRows(v.rows)
	if c := m.table.Cursor(); c >= len(v.rows) {
		m.table.SetCursor(max(len(v.rows)-1, 0))
	}
	m.current = v
}

func (m *Model) copySelected() {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.current.copyable) || m.current.copyable[i] == "" {
		m.flash = "Rien à copier"
		return
	}
	if err := clipboard.WriteAll(m.current.copyable[i]); err != nil {
		m.flash = "Copie impossible: " + err.Error()
		return
	}
	m.flash = "Copié: " + m.current.copyable[i]
}

func nextEnableFilter(cur *bool) *bool {
	switch {
	case cur == nil:
		v := true
		return &v
	case *cur:
		v := false
		return &v
	default:
		return nil
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.dialog != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.dialog.view())
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" mobcash back office ") + "  " + m.renderStatus() + "\n\n")
	b.WriteString(m.renderTabs() + "\n")
	b.WriteString(m.renderFilters() + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", max(min(m.width-2, 120), 1))) + "\n")

	switch {
	case len(m.current.rows) > 0:
		b.WriteString(m.table.View())
	case m.current.err != nil:
		b.WriteString(errorStyle.Render("  ✗ " + client.ErrorMessage(m.current.err, "Erreur lors du chargement des données")))
	case m.current.loading() || m.current.status == querycache.StatusIdle:
		b.WriteString("  " + m.spinner.View() + " Chargement...")
	default:
		b.WriteString(mutedStyle.Render("  Aucun résultat"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderStatus() string {
	var parts []string
	switch {
	case m.current.loading():
		parts = append(parts, m.spinner.View()+" Actualisation")
	case m.current.err != nil && len(m.current.rows) > 0:
		parts = append(parts, errorStyle.Render("✗ "+client.ErrorMessage(m.current.err, "Erreur de chargement")))
	case m.current.stale:
		parts = append(parts, staleStyle.Render("⟳ périmé"))
	}

	if m.toast != nil {
		if m.toast.IsError() {
			parts = append(parts, errorStyle.Render("✗ "+m.toast.Message))
		} else {
			parts = append(parts, successStyle.Render("✓ "+m.toast.Message))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTabs() string {
	var out []string
	for i, t := range tabs {
		name := fmt.Sprintf("[%d] %s", i+1, t)
		if t == m.active {
			out = append(out, activeTabStyle.Render(name))
		} else {
			out = append(out, inactiveTabStyle.Render(name))
		}
	}
	return strings.Join(out, "  ")
}

func (m Model) renderFilters() string {
	if m.searching {
		return m.search.View()
	}

	state := m.states[m.active]
	page := max(state.page, 1)
	last := models.LastPage(m.current.count, m.console.PageSize)

	parts := []string{fmt.Sprintf("Page %d/%d", page, max(last, 1)), fmt.Sprintf("%d résultats", m.current.count)}
	if state.search != "" {
		parts = append(parts, filterStyle.Render("Recherche: "+state.search))
	}
	if m.active == TabPlatforms && state.enable != nil {
		if *state.enable {
			parts = append(parts, filterStyle.Render("Actives"))
		} else {
			parts = append(parts, filterStyle.Render("Inactives"))
		}
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}

func (m Model) renderStatusBar() string {
	type binding struct{ key, desc string }
	keys := []binding{
		{"/", "rechercher"},
		{"n/p", "page"},
		{"r", "actualiser"},
		{"c", "nouvelle recharge"},
		{"y", "copier"},
		{"?", "aide"},
		{"q", "quitter"},
	}
	if m.active == TabPlatforms {
		keys = slices.Insert(keys, 3, binding{"e", "actives"})
	}

	var out []string
	for _, k := range keys {
		out = append(out, keyStyle.Render(k.key)+" "+keyDescStyle.Render(k.desc))
	}
	bar := strings.Join(out, "  ")
	if m.flash != "" {
		bar += "  " + successStyle.Render(m.flash)
	}
	return statusBarStyle.Render(bar)
}

func (m Model) renderHelp() string {
	lines := []string{
		titleStyle.Render(" Aide "),
		"",
		keyStyle.Render("1 2 3, tab") + keyDescStyle.Render("  changer d'onglet"),
		keyStyle.Render("↑ ↓") + keyDescStyle.Render("         parcourir les lignes"),
		keyStyle.Render("/") + keyDescStyle.Render("           rechercher (Entrée valide, Échap annule)"),
		keyStyle.Render("n p") + keyDescStyle.Render("         page suivante / précédente"),
		keyStyle.Render("r") + keyDescStyle.Render("           recharger la liste"),
		keyStyle.Render("e") + keyDescStyle.Render("           plateformes: toutes, actives, inactives"),
		keyStyle.Render("c") + keyDescStyle.Render("           nouvelle recharge"),
		keyStyle.Render("y") + keyDescStyle.Render("           copier le code parrain, la référence ou l'ID"),
		keyStyle.Render("q") + keyDescStyle.Render("           quitter"),
		"",
		mutedStyle.Render("Échap ou ? pour fermer"),
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}
