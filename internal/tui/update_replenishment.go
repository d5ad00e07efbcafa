package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"stockdeck/internal/api"
)

// Settings editor fields, top to bottom, with their declared minimums.
const (
	repFieldLeadTime = iota
	repFieldMinOrder
	repFieldReorderPoint
	repFieldSafetyStock
	repFieldTargetStock
	repFieldCount
)

func repFieldMin(field int) int {
	switch field {
	case repFieldLeadTime, repFieldMinOrder:
		return 1
	}
	return 0
}

func (m Model) updateReplenishment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.repEditing {
		switch msg.String() {
		case "e":
			if m.repSettings == nil {
				m.status = "No settings loaded yet"
				return m, nil
			}
			m.repEditing = true
			m.repField = 0
			m.repMessage = ""
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		// Cancel: throw the edits away and reseed from the last fetch.
		m.repEditing = false
		if m.repSettings != nil {
			m.repForm = *m.repSettings
		}
		return m, nil
	case "up", "shift+tab":
		m.repField = (m.repField - 1 + repFieldCount) % repFieldCount
		return m, nil
	case "down":
		m.repField = (m.repField + 1) % repFieldCount
		return m, nil
	case "enter":
		return m.submitSettings()
	case "left", "-":
		m.editRepField(func(v int) int { return v - 1 })
		return m, nil
	case "right", "+":
		m.editRepField(func(v int) int { return v + 1 })
		return m, nil
	case "backspace":
		m.editRepField(func(v int) int { return v / 10 })
		return m, nil
	}
	if len(msg.Runes) == 1 && msg.Type == tea.KeyRunes {
		r := msg.Runes[0]
		if r >= '0' && r <= '9' {
			d := int(r - '0')
			m.editRepField(func(v int) int { return v*10 + d })
		}
	}
	return m, nil
}

// editRepField applies fn to the focused field, clamped to the field's
// declared minimum on every edit.
func (m *Model) editRepField(fn func(int) int) {
	if m.repSaving {
		return
	}
	floor := repFieldMin(m.repField)
	switch m.repField {
	case repFieldLeadTime:
		m.repForm.LeadTimeDays = clampMin(fn(m.repForm.LeadTimeDays), floor)
	case repFieldMinOrder:
		m.repForm.MinOrderQty = clampMin(fn(m.repForm.MinOrderQty), floor)
	case repFieldReorderPoint:
		m.repForm.ReorderPoint = clampMin(fn(m.repForm.ReorderPoint), floor)
	case repFieldSafetyStock:
		m.repForm.SafetyStock = clampMin(fn(m.repForm.SafetyStock), floor)
	case repFieldTargetStock:
		m.repForm.TargetStockLevel = clampMin(fn(m.repForm.TargetStockLevel), floor)
	}
}

func (m Model) submitSettings() (tea.Model, tea.Cmd) {
	if m.repSaving {
		return m, nil
	}
	sku := m.reg.SelectedID()
	if sku == "" {
		m.repError = errNoSku
		return m, nil
	}
	m.repSaving = true
	m.repError = ""
	return m, saveSettingsCmd(m.svc, sku, m.repForm)
}

func (m Model) handleSettingsSaved(msg settingsSavedMsg) (tea.Model, tea.Cmd) {
	m.repSaving = false
	if msg.err != nil {
		// Draft untouched so the edit can be corrected and resubmitted.
		m.repError = api.Detail(msg.err)
		m.log.Warn().Err(msg.err).Msg("update settings failed")
		return m, nil
	}
	m.repEditing = false
	m.repMessage = msg.message
	m.repError = ""
	// A settings change can change the recommendation; re-run the compound
	// fetch rather than trusting local state.
	return m.startReplenishmentFetch()
}
