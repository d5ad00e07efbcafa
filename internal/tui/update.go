package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"stockdeck/internal/api"
	"stockdeck/internal/project"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case skusLoadedMsg:
		return m.handleSkusLoaded(msg)
	case seriesLoadedMsg:
		return m.handleSeriesLoaded(msg)
	case replenishmentLoadedMsg:
		return m.handleReplenishmentLoaded(msg)
	case transactionSavedMsg:
		return m.handleTransactionSaved(msg)
	case settingsSavedMsg:
		return m.handleSettingsSaved(msg)
	case returnToHistoryMsg:
		return m.switchTab(project.TabHistory)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePicker()
		return m, nil
	case tea.KeyMsg:
		if m.pickerOpen {
			return m.updatePicker(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Fetch-result handlers
// ---------------------------------------------------------------------------

func (m Model) handleSkusLoaded(msg skusLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Fails open: keep whatever list we had, no retry scheduled.
		m.log.Warn().Err(msg.err).Msg("sku list refresh failed")
		m.status = "SKU list unavailable"
		return m, nil
	}
	defaulted := m.reg.Replace(msg.skus)
	if defaulted {
		m.txDraft.SKUID = m.reg.SelectedID()
		// First selection just landed; pull data for the landing tab.
		return m.refetchActive()
	}
	return m, nil
}

func (m Model) handleSeriesLoaded(msg seriesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seriesSeq {
		// A newer fetch was issued while this one was in flight.
		m.log.Debug().Uint64("seq", msg.seq).Uint64("latest", m.seriesSeq).Msg("stale series response discarded")
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.rows = []project.Row{}
		m.chart = project.Chart{Labels: []string{}}
		m.fetchErr = api.Detail(msg.err)
		m.log.Warn().Err(msg.err).Str("tab", string(msg.tab)).Msg("series fetch failed")
		return m, nil
	}
	m.fetchErr = ""
	m.seriesTab = msg.tab
	switch msg.tab {
	case project.TabHistory:
		m.rows = project.HistoryRows(msg.history.History)
		m.historyStock = msg.history.CurrentStock
	case project.TabForecast:
		m.rows = project.ForecastRows(msg.forecast.Forecast)
		m.forecast = forecastMeta{
			currentStock:        msg.forecast.CurrentStock,
			totalForecastDemand: msg.forecast.TotalForecastDemand,
			stockStatus:         msg.forecast.StockStatus,
		}
	}
	m.chart = project.ChartSeries(msg.tab, m.rows)
	return m, nil
}

func (m Model) handleReplenishmentLoaded(msg replenishmentLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.repSeq {
		m.log.Debug().Uint64("seq", msg.seq).Uint64("latest", m.repSeq).Msg("stale replenishment response discarded")
		return m, nil
	}
	m.repLoading = false
	if msg.err != nil {
		// All-or-nothing: neither half is touched on failure.
		m.repError = api.Detail(msg.err)
		m.log.Warn().Err(msg.err).Msg("replenishment fetch failed")
		return m, nil
	}
	m.repError = ""
	settings := msg.bundle.Settings
	rec := msg.bundle.Recommendation
	m.repSettings = &settings
	m.repRec = &rec
	// Reseed the edit draft from the decoded struct wholesale; a zero-valued
	// server setting is a value, not an absence.
	if !m.repEditing {
		m.repForm = settings
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Key input
// ---------------------------------------------------------------------------

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.formCapturesKeys() && msg.String() == "q" {
			break
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		return m.cycleTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.cycleTab(-1)
	case key.Matches(msg, m.keys.Picker):
		if m.formCapturesKeys() {
			break
		}
		return m.openPicker()
	case key.Matches(msg, m.keys.Refresh):
		if m.formCapturesKeys() {
			break
		}
		return m.refetchActive()
	}

	switch m.activeTab {
	case project.TabHistory, project.TabForecast:
		switch msg.String() {
		case "1", "2", "3":
			return m.setWindow(int(msg.String()[0] - '1'))
		}
	case project.TabTransaction:
		return m.updateTransaction(msg)
	case project.TabReplenishment:
		return m.updateReplenishment(msg)
	}
	return m, nil
}

// formCapturesKeys reports whether plain letter keys currently belong to a
// form (so q/s/r type into fields instead of acting as shortcuts).
func (m Model) formCapturesKeys() bool {
	if m.activeTab == project.TabTransaction {
		return false // numeric fields only; letters stay shortcuts
	}
	return m.activeTab == project.TabReplenishment && m.repEditing
}

// ---------------------------------------------------------------------------
// SKU picker overlay
// ---------------------------------------------------------------------------

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	m.pickerOpen = true
	m.pickerQuery = ""
	m.syncPickerItems()
	m.pickerList.Select(0)
	return m, nil
}

func (m *Model) syncPickerItems() {
	matches := m.reg.Search(m.pickerQuery)
	items := make([]list.Item, 0, len(matches))
	for _, s := range matches {
		items = append(items, skuItem{sku: s})
	}
	m.pickerList.SetItems(items)
}

func (m *Model) resizePicker() {
	if m.width == 0 || m.height == 0 {
		return
	}
	w := min(60, m.width-6)
	if w < 30 {
		w = 30
	}
	m.pickerList.SetWidth(w)
	m.pickerList.SetHeight(min(14, m.height-8))
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pickerOpen = false
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		item, ok := m.pickerList.SelectedItem().(skuItem)
		if !ok {
			m.status = "No SKU selected"
			return m, nil
		}
		m.pickerOpen = false
		m.status = fmt.Sprintf("SKU: %s", item.sku.SKUID)
		return m.selectSku(item.sku.SKUID)
	case "backspace":
		if len(m.pickerQuery) > 0 {
			m.pickerQuery = m.pickerQuery[:len(m.pickerQuery)-1]
			m.syncPickerItems()
			m.pickerList.Select(0)
		}
		return m, nil
	}
	if len(msg.Runes) == 1 && msg.Type == tea.KeyRunes {
		m.pickerQuery += string(msg.Runes)
		m.syncPickerItems()
		m.pickerList.Select(0)
		return m, nil
	}
	var cmd tea.Cmd
	m.pickerList, cmd = m.pickerList.Update(msg)
	return m, cmd
}
