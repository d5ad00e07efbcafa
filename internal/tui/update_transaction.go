package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"stockdeck/internal/api"
)

// Transaction form fields, top to bottom.
const (
	txFieldDate = iota
	txFieldSales
	txFieldPurchase
	txFieldCount
)

const (
	errNoSku  = "Please select a SKU"
	errNoQty  = "Enter either sales qty or purchase qty"
	msgSaving = "Recording..."
)

func (m Model) updateTransaction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "shift+tab":
		m.txField = (m.txField - 1 + txFieldCount) % txFieldCount
		return m, nil
	case "down":
		m.txField = (m.txField + 1) % txFieldCount
		return m, nil
	case "enter":
		return m.submitTransaction()
	case "backspace":
		m.editTxField(func(v int) int { return v / 10 }, trimDate)
		return m, nil
	case "left", "-":
		m.editTxField(func(v int) int { return v - 1 }, nil)
		return m, nil
	case "right", "+":
		m.editTxField(func(v int) int { return v + 1 }, nil)
		return m, nil
	}
	if len(msg.Runes) == 1 && msg.Type == tea.KeyRunes {
		r := msg.Runes[0]
		if r >= '0' && r <= '9' {
			d := int(r - '0')
			m.editTxField(func(v int) int { return v*10 + d }, func(s string) string { return s + string(r) })
			return m, nil
		}
		if m.txField == txFieldDate && (r == '-') {
			m.txDraft.TransactionDate += "-"
			return m, nil
		}
	}
	return m, nil
}

// editTxField applies qty to the focused quantity field (clamped at zero)
// or date to the focused date field. The form is frozen while a submission
// is in flight.
func (m *Model) editTxField(qty func(int) int, date func(string) string) {
	if m.txBusy {
		return
	}
	switch m.txField {
	case txFieldSales:
		m.txDraft.SalesQty = clampMin(qty(m.txDraft.SalesQty), 0)
	case txFieldPurchase:
		m.txDraft.PurchaseQty = clampMin(qty(m.txDraft.PurchaseQty), 0)
	case txFieldDate:
		if date != nil {
			m.txDraft.TransactionDate = date(m.txDraft.TransactionDate)
		}
	}
}

// submitTransaction validates the draft in order and posts it. The busy
// flag is the sole reentrancy guard; there is no submission lock.
func (m Model) submitTransaction() (tea.Model, tea.Cmd) {
	if m.txBusy {
		return m, nil
	}
	m.txMessage = ""
	if strings.TrimSpace(m.txDraft.SKUID) == "" {
		m.txError = errNoSku
		return m, nil
	}
	if m.txDraft.SalesQty == 0 && m.txDraft.PurchaseQty == 0 {
		m.txError = errNoQty
		return m, nil
	}
	if strings.TrimSpace(m.txDraft.TransactionDate) == "" {
		m.txDraft.TransactionDate = m.today()
	}
	m.txError = ""
	m.txBusy = true
	m.status = msgSaving
	return m, recordTransactionCmd(m.svc, m.txDraft)
}

func (m Model) handleTransactionSaved(msg transactionSavedMsg) (tea.Model, tea.Cmd) {
	m.txBusy = false
	m.status = ""
	if msg.err != nil {
		// Draft stays intact so the user can correct and resubmit.
		m.txError = api.Detail(msg.err)
		m.log.Warn().Err(msg.err).Msg("record transaction failed")
		return m, nil
	}
	m.txError = ""
	m.txMessage = fmt.Sprintf("Recorded. Stock: %d → %d", msg.result.PreviousStock, msg.result.NewStockLevel)
	m.txDraft.SalesQty = 0
	m.txDraft.PurchaseQty = 0
	m.txDraft.TransactionDate = m.today()
	// Stock changed server-side: re-sync the registry, then hop back to
	// history once the success message has had its moment.
	return m, tea.Batch(
		loadSkusCmd(m.svc),
		returnToHistoryCmd(m.autoReturnDelay()),
	)
}

func trimDate(s string) string {
	if s == "" {
		return s
	}
	return s[:len(s)-1]
}

func clampMin(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}
