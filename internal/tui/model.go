package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"stockdeck/internal/api"
	"stockdeck/internal/config"
	"stockdeck/internal/project"
	"stockdeck/internal/skus"
)

const appName = "Stockdeck"

// Tab order for cycling. Forecast is the landing tab.
var tabOrder = []project.Tab{
	project.TabHistory,
	project.TabForecast,
	project.TabReplenishment,
	project.TabTransaction,
}

func tabTitle(tab project.Tab) string {
	switch tab {
	case project.TabHistory:
		return "History"
	case project.TabForecast:
		return "Forecast"
	case project.TabReplenishment:
		return "Replenishment"
	case project.TabTransaction:
		return "Record Transaction"
	}
	return string(tab)
}

// ---------------------------------------------------------------------------
// SKU picker item (implements list.Item)
// ---------------------------------------------------------------------------

type skuItem struct {
	sku api.SKU
}

func (s skuItem) Title() string       { return s.sku.SKUID + " — " + s.sku.SKUName }
func (s skuItem) Description() string { return "" }
func (s skuItem) FilterValue() string { return s.sku.SKUID + " " + s.sku.SKUName }

type skuItemDelegate struct{}

func (d skuItemDelegate) Height() int  { return 1 }
func (d skuItemDelegate) Spacing() int { return 0 }
func (d skuItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}
func (d skuItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(skuItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = cursorStyle.Render("> ")
	}
	fmt.Fprint(w, prefix+entry.Title())
}

// ---------------------------------------------------------------------------
// Key bindings
// ---------------------------------------------------------------------------

type keyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Picker  key.Binding
	Refresh key.Binding
	Window  key.Binding
	Edit    key.Binding
	Submit  key.Binding
	UpDown  key.Binding
	Close   key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Picker:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select sku")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Window:  key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "window")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit settings")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		UpDown:  key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "field")),
		Close:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Picker, k.Refresh, k.Window, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.NextTab, k.PrevTab, k.Picker, k.Refresh, k.Window, k.Edit, k.Submit, k.UpDown, k.Close, k.Quit}}
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// forecastMeta is the per-fetch stock summary that rides along with a
// forecast payload. Recomputed by the server every call, never persisted.
type forecastMeta struct {
	currentStock        int
	totalForecastDemand float64
	stockStatus         string
}

// Model is the single process-wide view state. Every mutation funnels
// through its Update handlers; commands never touch state directly.
type Model struct {
	svc Service
	reg *skus.Registry
	cfg config.Config
	log zerolog.Logger

	activeTab    project.Tab
	historyDays  int
	forecastDays int

	loading  bool
	fetchErr string
	status   string

	// active series view model
	rows         []project.Row
	chart        project.Chart
	seriesTab    project.Tab
	historyStock int
	forecast     forecastMeta

	// generation counters, bumped at issue time per fetch family
	seriesSeq uint64
	repSeq    uint64

	// replenishment state; settings and recommendation move together
	repSettings *api.ReplenishmentSettings
	repRec      *api.ReplenishmentRecommendation
	repLoading  bool
	repError    string
	repMessage  string

	// settings editor draft
	repForm    api.ReplenishmentSettings
	repEditing bool
	repField   int
	repSaving  bool

	// transaction recorder draft
	txDraft   api.TransactionDraft
	txField   int
	txBusy    bool
	txError   string
	txMessage string

	// SKU picker overlay
	pickerOpen  bool
	pickerQuery string
	pickerList  list.Model

	spin   spinner.Model
	keys   keyMap
	width  int
	height int

	now func() time.Time
}

// New wires the dashboard model. svc is usually *api.Client.
func New(svc Service, cfg config.Config, log zerolog.Logger) Model {
	picker := list.New([]list.Item{}, skuItemDelegate{}, 40, 12)
	picker.Title = "Select SKU"
	picker.Styles.Title = titleStyle
	picker.Styles.NoItems = lipgloss.NewStyle()
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(false)
	picker.SetShowHelp(false)
	picker.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		svc:          svc,
		reg:          skus.New(),
		cfg:          cfg,
		log:          log,
		activeTab:    project.TabForecast,
		historyDays:  cfg.UI.HistoryDays,
		forecastDays: cfg.UI.ForecastDays,
		rows:         []project.Row{},
		chart:        project.Chart{Labels: []string{}},
		pickerList:   picker,
		spin:         sp,
		keys:         newKeyMap(),
		now:          time.Now,
	}
}

// Init loads the SKU registry and the landing tab's data.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadSkusCmd(m.svc), m.spin.Tick)
}

// ---------------------------------------------------------------------------
// Named transitions — the only places view state changes shape
// ---------------------------------------------------------------------------

// switchTab moves the state machine and issues the entry fetch the target
// tab requires. Transaction is pure form surface: no fetch on entry.
// Transitions never wait for in-flight requests.
func (m Model) switchTab(tab project.Tab) (Model, tea.Cmd) {
	m.activeTab = tab
	switch tab {
	case project.TabHistory, project.TabForecast:
		return m.startSeriesFetch()
	case project.TabReplenishment:
		return m.startReplenishmentFetch()
	}
	return m, nil
}

func (m Model) cycleTab(delta int) (Model, tea.Cmd) {
	idx := 0
	for i, t := range tabOrder {
		if t == m.activeTab {
			idx = i
			break
		}
	}
	next := tabOrder[(idx+delta+len(tabOrder))%len(tabOrder)]
	return m.switchTab(next)
}

// startSeriesFetch issues the history or forecast fetch for the active tab
// and window. No-op without a selected SKU.
func (m Model) startSeriesFetch() (Model, tea.Cmd) {
	sku := m.reg.SelectedID()
	if sku == "" {
		return m, nil
	}
	days := m.historyDays
	if m.activeTab == project.TabForecast {
		days = m.forecastDays
	}
	m.seriesSeq++
	m.loading = true
	m.fetchErr = ""
	return m, loadSeriesCmd(m.svc, m.seriesSeq, m.activeTab, sku, days)
}

// startReplenishmentFetch issues the compound settings+recommendation read.
func (m Model) startReplenishmentFetch() (Model, tea.Cmd) {
	sku := m.reg.SelectedID()
	if sku == "" {
		return m, nil
	}
	m.repSeq++
	m.repLoading = true
	return m, loadReplenishmentCmd(m.svc, m.repSeq, sku, m.forecastDays)
}

// refetchActive re-issues whatever the active tab is showing. Used after a
// SKU change and by the manual refresh key.
func (m Model) refetchActive() (Model, tea.Cmd) {
	switch m.activeTab {
	case project.TabHistory, project.TabForecast:
		return m.startSeriesFetch()
	case project.TabReplenishment:
		return m.startReplenishmentFetch()
	}
	return m, nil
}

// selectSku changes the registry selection, keeps the transaction draft in
// step, and refetches for the active tab.
func (m Model) selectSku(id string) (Model, tea.Cmd) {
	m.reg.Select(id)
	m.txDraft.SKUID = id
	return m.refetchActive()
}

// setWindow applies the nth window choice for the active tab and refetches.
// Windows only exist on the history and forecast tabs.
func (m Model) setWindow(n int) (Model, tea.Cmd) {
	switch m.activeTab {
	case project.TabHistory:
		choices := config.HistoryWindows()
		if n < 0 || n >= len(choices) {
			return m, nil
		}
		m.historyDays = choices[n]
		return m.startSeriesFetch()
	case project.TabForecast:
		choices := config.ForecastWindows()
		if n < 0 || n >= len(choices) {
			return m, nil
		}
		m.forecastDays = choices[n]
		return m.startSeriesFetch()
	}
	return m, nil
}

func (m Model) today() string {
	return m.now().Format("2006-01-02")
}

func (m Model) autoReturnDelay() time.Duration {
	ms := m.cfg.UI.AutoReturnDelayMS
	if ms <= 0 {
		ms = 1500
	}
	return time.Duration(ms) * time.Millisecond
}
