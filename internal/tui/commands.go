package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"stockdeck/internal/api"
	"stockdeck/internal/project"
)

// ---------------------------------------------------------------------------
// Tea commands — every network operation the dashboard can issue. Each maps
// (active tab, selected SKU, window) to exactly one service call and reports
// back as a typed message; state is only touched by the message handlers.
// ---------------------------------------------------------------------------

func loadSkusCmd(svc Service) tea.Cmd {
	return func() tea.Msg {
		skus, err := svc.ListSKUs(context.Background())
		return skusLoadedMsg{skus: skus, err: err}
	}
}

func loadSeriesCmd(svc Service, seq uint64, tab project.Tab, skuID string, days int) tea.Cmd {
	return func() tea.Msg {
		msg := seriesLoadedMsg{seq: seq, tab: tab}
		switch tab {
		case project.TabHistory:
			msg.history, msg.err = svc.History(context.Background(), skuID, days)
		case project.TabForecast:
			msg.forecast, msg.err = svc.Forecast(context.Background(), skuID, days)
		}
		return msg
	}
}

func loadReplenishmentCmd(svc Service, seq uint64, skuID string, days int) tea.Cmd {
	return func() tea.Msg {
		bundle, err := svc.Replenishment(context.Background(), skuID, days)
		return replenishmentLoadedMsg{seq: seq, bundle: bundle, err: err}
	}
}

func recordTransactionCmd(svc Service, draft api.TransactionDraft) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.RecordTransaction(context.Background(), draft)
		return transactionSavedMsg{result: res, err: err}
	}
}

func saveSettingsCmd(svc Service, skuID string, s api.ReplenishmentSettings) tea.Cmd {
	return func() tea.Msg {
		msg, err := svc.UpdateReplenishmentSettings(context.Background(), skuID, s)
		return settingsSavedMsg{message: msg, err: err}
	}
}

func returnToHistoryCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return returnToHistoryMsg{}
	})
}
