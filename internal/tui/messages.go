package tui

import (
	"stockdeck/internal/api"
	"stockdeck/internal/project"
)

// ---------------------------------------------------------------------------
// Bubble Tea messages
// ---------------------------------------------------------------------------

type skusLoadedMsg struct {
	skus []api.SKU
	err  error
}

// seriesLoadedMsg carries the result of a history or forecast fetch. seq is
// the generation stamped at issue time; arrivals older than the latest
// issued generation are discarded instead of overwriting fresher state.
type seriesLoadedMsg struct {
	seq      uint64
	tab      project.Tab
	history  api.HistoryResponse
	forecast api.ForecastResponse
	err      error
}

type replenishmentLoadedMsg struct {
	seq    uint64
	bundle api.ReplenishmentBundle
	err    error
}

type transactionSavedMsg struct {
	result api.TransactionResult
	err    error
}

type settingsSavedMsg struct {
	message string
	err     error
}

// returnToHistoryMsg fires after the post-transaction delay.
type returnToHistoryMsg struct{}
