// Package tui is the terminal sidebar: a live, reorderable view of the
// browser's tabs driven by the extension bridge.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/azln/zenith/internal/applog"
	"github.com/azln/zenith/internal/bridge"
	"github.com/azln/zenith/internal/coalesce"
	"github.com/azln/zenith/internal/prefs"
	"github.com/azln/zenith/internal/preview"
	"github.com/azln/zenith/internal/render"
	"github.com/azln/zenith/internal/state"
	"github.com/azln/zenith/internal/storage"
	"github.com/azln/zenith/internal/suggest"
	"github.com/azln/zenith/internal/types"
)

const (
	// renderQuiet is the frame cadence: once a refresh is scheduled, the
	// fetch fires on this deadline no matter how many more events arrive.
	renderQuiet = 33 * time.Millisecond

	previewDwell = 1500 * time.Millisecond
)

// --- Messages ---

type bridgeEventMsg struct{ ev bridge.Event }

type renderDueMsg struct{}

type snapshotMsg struct {
	snap *types.Snapshot
	ok   bool
}

type suggestionsMsg struct {
	query string
	items []types.Suggestion
}

type previewDueMsg struct {
	tabID int
	gen   uint64
}

type previewReadyMsg struct {
	tabID int
	p     preview.Preview
}

type archiveSavedMsg struct {
	rev int
	err error
}

// --- Model ---

type Model struct {
	bridge   *bridge.Bridge
	st       *state.Store
	prefs    *prefs.Store
	previews *preview.Cache

	sidebar *Sidebar
	drag    *DragController
	urlbar  URLBar

	search         textinput.Model
	searching      bool
	renameFor      int // group id being renamed, 0 when idle
	menu           ContextMenu
	showMenu       bool
	onboarding     Onboarding
	showOnboarding bool

	// renderSched coalesces refresh bursts to one pending fetch.
	renderSched *coalesce.Scheduler

	width     int
	height    int
	connected bool
	flash     string // transient status line, replaced by the next one

	// Hover preview. gen invalidates armed timers when the cursor moves.
	previewGen  uint64
	previewTab  int
	previewBody preview.Preview
	showPreview bool

	// Mouse drag tracking.
	pressedTab   int
	pressedIndex int
}

func NewModel(b *bridge.Bridge, ps *prefs.Store, pc *preview.Cache) Model {
	st := state.NewStore()

	search := textinput.New()
	search.Placeholder = "filter tabs"
	search.Prompt = "/ "

	sched := coalesce.New()
	sched.Register("render", coalesce.Coalesce, renderQuiet)

	m := Model{
		bridge:      b,
		st:          st,
		prefs:       ps,
		previews:    pc,
		sidebar:     NewSidebar(st),
		urlbar:      NewURLBar(),
		search:      search,
		renderSched: sched,
	}
	m.drag = NewDragController(st, b)
	if !ps.Get().OnboardingShown {
		m.showOnboarding = true
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		startBridge(m.bridge),
		listenEvents(m.bridge),
		listenRender(m.renderSched),
	)
}

// --- Commands ---

func startBridge(b *bridge.Bridge) tea.Cmd {
	return func() tea.Msg {
		b.ListenAndServe(context.Background())
		return nil
	}
}

func listenEvents(b *bridge.Bridge) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-b.Events()
		if !ok {
			return nil
		}
		return bridgeEventMsg{ev: ev}
	}
}

func listenRender(sched *coalesce.Scheduler) tea.Cmd {
	return func() tea.Msg {
		<-sched.Fires()
		return renderDueMsg{}
	}
}

func fetchSnapshot(b *bridge.Bridge, windowID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snap, ok := b.FetchSnapshot(ctx, windowID)
		return snapshotMsg{snap: snap, ok: ok}
	}
}

func fetchSuggestions(b *bridge.Bridge, st *state.Store, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		history := b.GetHistory(ctx, query, 50)
		items := suggest.Rank(query, st.Snapshot().Tabs, history)
		return suggestionsMsg{query: query, items: items}
	}
}

func armPreview(tabID int, gen uint64) tea.Cmd {
	return tea.Tick(previewDwell, func(time.Time) tea.Msg {
		return previewDueMsg{tabID: tabID, gen: gen}
	})
}

// fetchPreview prefers the extension's captured preview and falls back to
// fetching the page ourselves.
func fetchPreview(b *bridge.Bridge, pc *preview.Cache, tabID int, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if text := b.GetTabPreview(ctx, tabID); text != "" {
			return previewReadyMsg{tabID: tabID, p: preview.Preview{Excerpt: preview.Excerpt(text)}}
		}
		return previewReadyMsg{tabID: tabID, p: pc.Get(tabID, url)}
	}
}

func saveArchive(b *bridge.Bridge, label string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snap, ok := b.FetchSnapshot(ctx, 0)
		if !ok || snap == nil {
			return archiveSavedMsg{err: fmt.Errorf("no snapshot available")}
		}
		dbPath, err := storage.DefaultDBPath()
		if err != nil {
			return archiveSavedMsg{err: err}
		}
		db, err := storage.OpenDB(dbPath)
		if err != nil {
			return archiveSavedMsg{err: err}
		}
		defer db.Close()
		rev, err := storage.CreateArchive(db, snap, label)
		return archiveSavedMsg{rev: rev, err: err}
	}
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sidebar.Height = m.height - 4 // top bar, search row, bottom bar
		m.sidebar.SetWidth(m.width)
		m.urlbar.Width = m.width - 4
		return m, nil

	case bridgeEventMsg:
		return m.handleEvent(msg.ev)

	case renderDueMsg:
		return m, tea.Batch(
			fetchSnapshot(m.bridge, 0),
			listenRender(m.renderSched),
		)

	case snapshotMsg:
		if msg.ok && msg.snap != nil {
			if m.st.ReplaceSnapshot(*msg.snap) {
				m.sidebar.Refresh()
			}
		}
		return m, nil

	case suggestionsMsg:
		// Ignore results for text the user has already typed past.
		if m.urlbar.Focused() && msg.query == m.urlbar.Value() {
			m.urlbar.SetSuggestions(msg.items)
		}
		return m, nil

	case previewDueMsg:
		if msg.gen != m.previewGen || m.drag.Active() {
			return m, nil
		}
		node := m.sidebar.SelectedNode()
		if node == nil || node.Kind != render.NodeTab || node.Tab.ID != msg.tabID || node.Tab.Active {
			return m, nil
		}
		return m, fetchPreview(m.bridge, m.previews, msg.tabID, node.Tab.URL)

	case previewReadyMsg:
		if m.cursorOnTab(msg.tabID) && msg.p.Excerpt != "" {
			m.previewTab = msg.tabID
			m.previewBody = msg.p
			m.showPreview = true
		}
		return m, nil

	case archiveSavedMsg:
		if msg.err != nil {
			m.flash = "Archive failed: " + msg.err.Error()
			applog.Error("archive.save", msg.err)
		} else {
			m.flash = fmt.Sprintf("Saved archive #%d", msg.rev)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

func (m Model) handleEvent(ev bridge.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenEvents(m.bridge)}

	switch ev.Kind {
	case bridge.EventConnected:
		m.connected = true
		cmds = append(cmds, fetchSnapshot(m.bridge, 0))
	case bridge.EventDisconnected:
		m.connected = false
	case bridge.EventActivated:
		// Activation skips the render coalescer for instant feedback,
		// and foreground pages change under cached previews.
		m.previews.Invalidate(ev.TabID)
		m.st.MarkPendingSelection(ev.TabID)
		m.hidePreview()
		cmds = append(cmds, fetchSnapshot(m.bridge, ev.WindowID))
	case bridge.EventRefresh, bridge.EventPrefsChanged:
		m.renderSched.Trigger("render")
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) hidePreview() {
	m.previewGen++
	m.showPreview = false
	m.previewTab = 0
}

func (m *Model) cursorOnTab(tabID int) bool {
	node := m.sidebar.SelectedNode()
	return node != nil && node.Kind == render.NodeTab && node.Tab.ID == tabID
}

// adjustWidth nudges the persisted sidebar width. The value is in pixels
// for the extension's benefit; the terminal keeps sizing to the window.
func (m *Model) adjustWidth(delta int) {
	cur := m.prefs.Get().SidebarWidth
	if err := m.prefs.SetWidth(cur + delta); err != nil {
		applog.Error("prefs.width", err)
		return
	}
	m.flash = fmt.Sprintf("Sidebar width %dpx", m.prefs.Get().SidebarWidth)
}

// togglePinned flips whether the extension keeps the sidebar open. Like
// the width it only matters on the browser side; the pref watcher pushes
// the change over the bridge.
func (m *Model) togglePinned() {
	if err := m.prefs.Update(func(p *prefs.Prefs) { p.SidebarPinned = !p.SidebarPinned }); err != nil {
		applog.Error("prefs.pinned", err)
		return
	}
	if m.prefs.Get().SidebarPinned {
		m.flash = "Sidebar pinned"
	} else {
		m.flash = "Sidebar unpinned"
	}
}

// afterCursorMove hides any preview and re-arms the dwell timer for the
// newly selected tab.
func (m *Model) afterCursorMove() tea.Cmd {
	m.hidePreview()
	if m.drag.Active() {
		return nil
	}
	node := m.sidebar.SelectedNode()
	if node == nil || node.Kind != render.NodeTab || node.Tab.Active {
		return nil
	}
	return armPreview(node.Tab.ID, m.previewGen)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Onboarding swallows everything until dismissed.
	if m.showOnboarding {
		switch msg.String() {
		case "enter":
			m.onboarding.Advance()
		case "esc":
			m.onboarding.Skip()
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		if m.onboarding.Done() {
			m.showOnboarding = false
			m.prefs.Update(func(p *prefs.Prefs) { p.OnboardingShown = true })
		}
		return m, nil
	}

	if m.showMenu {
		return m.handleMenuKey(msg)
	}

	if m.urlbar.Focused() {
		return m.handleURLBarKey(msg)
	}

	if m.renameFor != 0 {
		return m.handleRenameKey(msg)
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.sidebar.MoveUp()
		return m, m.afterCursorMove()
	case "down", "j":
		m.sidebar.MoveDown()
		return m, m.afterCursorMove()
	case "enter":
		return m.activateSelection()
	case "/":
		m.searching = true
		m.search.SetValue(m.st.SearchQuery())
		return m, m.search.Focus()
	case "tab":
		return m, m.urlbar.Focus()
	case "esc":
		if m.st.SearchQuery() != "" {
			m.st.SetSearchQuery("")
			m.sidebar.Refresh()
		}
		m.hidePreview()
		m.drag.End()
		if tree := m.sidebar.Tree(); tree != nil {
			tree.ClearDropIndicators()
			tree.ClearDragging()
		}
		return m, nil
	case "x":
		if node := m.sidebar.SelectedNode(); node != nil && node.Kind == render.NodeTab {
			m.bridge.CloseTab(node.Tab.ID)
		}
		return m, nil
	case "p":
		if node := m.sidebar.SelectedNode(); node != nil && node.Kind == render.NodeTab {
			m.bridge.PinTab(node.Tab.ID, !node.Tab.Pinned)
		}
		return m, nil
	case "M":
		if node := m.sidebar.SelectedNode(); node != nil && node.Kind == render.NodeTab {
			m.bridge.MuteTab(node.Tab.ID, !node.Tab.Muted)
		}
		return m, nil
	case "n":
		m.bridge.NewTab(m.bridge.MainWindowID())
		return m, nil
	case "r":
		return m, fetchSnapshot(m.bridge, 0)
	case "S":
		m.flash = "Saving archive..."
		return m, saveArchive(m.bridge, "")
	case "[":
		m.adjustWidth(-prefs.WidthStep)
		return m, nil
	case "]":
		m.adjustWidth(prefs.WidthStep)
		return m, nil
	case "P":
		m.togglePinned()
		return m, nil
	case "h":
		if node := m.sidebar.SelectedNode(); node != nil && node.Kind == render.NodeGroupHeader {
			if !m.st.GroupCollapsed(node.Group.ID) {
				m.st.ToggleGroupCollapsed(node.Group.ID)
				m.sidebar.Refresh()
			}
		}
		return m, nil
	case "l":
		if node := m.sidebar.SelectedNode(); node != nil && node.Kind == render.NodeGroupHeader {
			if m.st.GroupCollapsed(node.Group.ID) {
				m.st.ToggleGroupCollapsed(node.Group.ID)
				m.sidebar.Refresh()
			}
		}
		return m, nil
	case ".":
		return m.openMenu()
	}
	return m, nil
}

func (m Model) activateSelection() (tea.Model, tea.Cmd) {
	node := m.sidebar.SelectedNode()
	if node == nil {
		return m, nil
	}
	switch node.Kind {
	case render.NodeTab:
		m.st.MarkPendingSelection(node.Tab.ID)
		m.bridge.SwitchTab(node.Tab.ID)
	case render.NodeGroupHeader:
		m.st.ToggleGroupCollapsed(node.Group.ID)
		m.sidebar.Refresh()
	}
	return m, nil
}

func (m Model) openMenu() (tea.Model, tea.Cmd) {
	node := m.sidebar.SelectedNode()
	if node == nil {
		return m, nil
	}
	switch node.Kind {
	case render.NodeTab:
		m.menu = TabMenu(node.Tab)
		m.showMenu = true
	case render.NodeGroupHeader:
		m.menu = GroupMenu(node.Group)
		m.showMenu = true
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.menu.MoveUp()
	case "down", "j":
		m.menu.MoveDown()
	case "esc":
		m.showMenu = false
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		item := m.menu.Selected()
		m.showMenu = false
		if item != nil {
			return m, m.runMenuAction(*item)
		}
	}
	return m, nil
}

func (m *Model) runMenuAction(item MenuItem) tea.Cmd {
	tabID, groupID := m.menu.TabID, m.menu.Group
	switch item.Action {
	case MenuPin:
		m.bridge.PinTab(tabID, true)
	case MenuUnpin:
		m.bridge.PinTab(tabID, false)
	case MenuMute:
		m.bridge.MuteTab(tabID, true)
	case MenuUnmute:
		m.bridge.MuteTab(tabID, false)
	case MenuDuplicate:
		m.bridge.DuplicateTab(tabID)
	case MenuReload:
		m.bridge.ReloadTab(tabID)
	case MenuDiscard:
		m.bridge.DiscardTab(tabID)
	case MenuNewGroupWithTab:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			m.bridge.CreateGroupWithTab(ctx, tabID, "New group", types.GroupColors[0])
			return nil
		}
	case MenuRemoveFromGroup:
		m.bridge.RemoveFromGroup(tabID)
	case MenuClose:
		m.bridge.CloseTab(tabID)
	case MenuCloseOthers:
		m.bridge.CloseOtherTabs(tabID)
	case MenuCloseToRight:
		m.bridge.CloseTabsToRight(tabID)
	case MenuGroupNewTab:
		m.bridge.NewTabInGroup(groupID)
	case MenuGroupRename:
		m.renameFor = groupID
		m.search.Prompt = "rename: "
		m.search.SetValue("")
		return m.search.Focus()
	case MenuGroupToWindow:
		m.bridge.MoveGroupToNewWindow(groupID)
	case MenuGroupClose:
		m.bridge.CloseGroup(groupID)
	}
	return nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.endRename()
		return m, nil
	case "enter":
		if title := m.search.Value(); title != "" {
			m.bridge.RenameGroup(m.renameFor, title, "")
		}
		m.endRename()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) endRename() {
	m.renameFor = 0
	m.search.Blur()
	m.search.SetValue("")
	m.search.Prompt = "/ "
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.st.SetSearchQuery("")
		m.sidebar.Refresh()
		return m, nil
	case "enter":
		// Keep the filter and activate the match under the cursor.
		m.searching = false
		m.search.Blur()
		return m.activateSelection()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.st.SearchQuery() {
		m.st.SetSearchQuery(q)
		m.sidebar.Refresh()
	}
	return m, cmd
}

func (m Model) handleURLBarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.urlbar.Blur()
		return m, nil
	case "up":
		m.urlbar.MoveUp()
		return m, nil
	case "down":
		m.urlbar.MoveDown()
		return m, nil
	case "enter":
		sel := m.urlbar.Selected()
		query := m.urlbar.Value()
		m.urlbar.Blur()
		switch {
		case sel != nil && sel.IsTab:
			m.st.MarkPendingSelection(sel.TabID)
			m.bridge.SwitchTab(sel.TabID)
		case sel != nil:
			m.bridge.NewTabURL(m.bridge.MainWindowID(), sel.URL)
		case query != "":
			m.bridge.NewTabURL(m.bridge.MainWindowID(), suggest.NavigateURL(query))
		}
		return m, nil
	}

	cmd, changed := m.urlbar.Update(msg)
	if !changed {
		return m, cmd
	}
	query := m.urlbar.Value()
	if query == "" {
		m.urlbar.SetSuggestions(nil)
		return m, cmd
	}
	return m, tea.Batch(cmd, fetchSuggestions(m.bridge, m.st, query))
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showMenu || m.showOnboarding || m.urlbar.Focused() {
		return m, nil
	}
	// Viewport rows start under the top bar and search row.
	y := msg.Y - 2

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.sidebar.MoveUp()
			return m, m.afterCursorMove()
		case tea.MouseButtonWheelDown:
			m.sidebar.MoveDown()
			return m, m.afterCursorMove()
		case tea.MouseButtonLeft:
			if idx := m.sidebar.IndexAt(y); idx >= 0 {
				m.sidebar.Cursor = idx
				node := m.sidebar.RowAt(y)
				if node != nil && node.Kind == render.NodeTab {
					m.pressedTab = node.Tab.ID
					m.pressedIndex = idx
				}
			}
			return m, nil
		case tea.MouseButtonRight:
			if idx := m.sidebar.IndexAt(y); idx >= 0 {
				m.sidebar.Cursor = idx
				return m.openMenu()
			}
			return m, nil
		}

	case tea.MouseActionMotion:
		if m.pressedTab == 0 {
			return m, nil
		}
		idx := m.sidebar.IndexAt(y)
		if !m.drag.Active() && idx >= 0 && idx != m.pressedIndex {
			m.drag.Start(m.pressedTab)
			m.hidePreview()
			if tree := m.sidebar.Tree(); tree != nil {
				tree.SetDragging(m.pressedTab, true)
			}
		}
		if m.drag.Active() {
			m.updateDropIndicator(idx)
		}
		return m, nil

	case tea.MouseActionRelease:
		if msg.Button != tea.MouseButtonLeft && msg.Button != tea.MouseButtonNone {
			return m, nil
		}
		m.pressedTab = 0
		if m.drag.Active() {
			m.completeDrop(y)
			return m, nil
		}
		// Plain click: activate the tab or toggle the group under the cursor.
		if idx := m.sidebar.IndexAt(y); idx >= 0 && idx == m.sidebar.Cursor {
			return m.activateSelection()
		}
		return m, nil
	}
	return m, nil
}

// updateDropIndicator marks the row under the pointer. Rows are one cell
// tall, so every tab target reads as the middle band and inserts above.
func (m *Model) updateDropIndicator(idx int) {
	tree := m.sidebar.Tree()
	if tree == nil {
		return
	}
	tree.ClearDropIndicators()
	if idx < 0 {
		return
	}
	node := tree.NodeAt(idx)
	switch {
	case node == nil:
	case node.Kind == render.NodeTab:
		tree.SetDropIndicator(idx, render.DropAbove)
	case node.Kind == render.NodeGroupHeader:
		tree.SetDropIndicator(idx, render.DropInto)
	}
}

func (m *Model) completeDrop(y int) {
	tree := m.sidebar.Tree()
	if tree != nil {
		tree.ClearDropIndicators()
		tree.ClearDragging()
	}
	node := m.sidebar.RowAt(y)
	switch {
	case node == nil:
		m.drag.End()
	case node.Kind == render.NodeTab:
		m.drag.DropOnTab(node.Tab.ID, dropZone(0, 1))
	case node.Kind == render.NodeGroupHeader:
		m.drag.DropOnGroup(node.Group.ID)
	default:
		m.drag.End()
	}
	m.pressedTab = 0
}

// --- View ---

var (
	topBarStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	bottomBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	previewStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m Model) View() string {
	if m.showOnboarding {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.onboarding.View())
	}
	if m.showMenu {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.menu.View())
	}
	if m.urlbar.Focused() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, m.urlbar.View())
	}

	var status string
	if m.connected {
		snap := m.st.Snapshot()
		status = fmt.Sprintf("zenith ● connected · %d tabs · %d groups", len(snap.Tabs), len(snap.Groups))
	} else {
		status = fmt.Sprintf("zenith ○ waiting for extension on :%d", m.bridge.Port())
	}
	topBar := topBarStyle.Render(status)

	searchRow := ""
	if m.searching || m.renameFor != 0 {
		searchRow = m.search.View()
	} else if q := m.st.SearchQuery(); q != "" {
		searchRow = bottomBarStyle.Render("/ " + q)
	}

	body := m.sidebar.View()

	if m.showPreview && m.previewBody.Excerpt != "" {
		title := m.previewBody.Title
		if title == "" {
			title = "Preview"
		}
		panel := previewStyle.Width(min(m.width-4, 60)).
			Render(lipgloss.NewStyle().Bold(true).Render(title) + "\n" + m.previewBody.Excerpt)
		body = lipgloss.JoinVertical(lipgloss.Left, body, panel)
	}

	help := "↑↓ move · enter focus · / filter · tab url bar · . menu · p pin · x close · S archive · q quit"
	if m.flash != "" {
		help = m.flash
	}
	bottomBar := bottomBarStyle.Render(help)

	return lipgloss.JoinVertical(lipgloss.Left, topBar, searchRow, body, bottomBar)
}

// Run starts the program. Kept here so main stays thin.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		applog.Error("tui.run", err)
		return err
	}
	return nil
}
