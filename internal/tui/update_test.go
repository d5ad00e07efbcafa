package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"stockdeck/internal/api"
	"stockdeck/internal/config"
	"stockdeck/internal/project"
)

// fakeService records calls and plays back canned responses.
type fakeService struct {
	calls []string

	skus    []api.SKU
	skusErr error

	history     api.HistoryResponse
	historyErr  error
	forecast    api.ForecastResponse
	forecastErr error

	txResult api.TransactionResult
	txErr    error

	bundle    api.ReplenishmentBundle
	bundleErr error

	saveMessage string
	saveErr     error
}

func (f *fakeService) ListSKUs(context.Context) ([]api.SKU, error) {
	f.calls = append(f.calls, "skus")
	return f.skus, f.skusErr
}

func (f *fakeService) History(_ context.Context, sku string, days int) (api.HistoryResponse, error) {
	f.calls = append(f.calls, "history")
	return f.history, f.historyErr
}

func (f *fakeService) Forecast(_ context.Context, sku string, days int) (api.ForecastResponse, error) {
	f.calls = append(f.calls, "forecast")
	return f.forecast, f.forecastErr
}

func (f *fakeService) RecordTransaction(_ context.Context, draft api.TransactionDraft) (api.TransactionResult, error) {
	f.calls = append(f.calls, "record")
	return f.txResult, f.txErr
}

func (f *fakeService) UpdateReplenishmentSettings(_ context.Context, sku string, s api.ReplenishmentSettings) (string, error) {
	f.calls = append(f.calls, "save-settings")
	return f.saveMessage, f.saveErr
}

func (f *fakeService) Replenishment(_ context.Context, sku string, days int) (api.ReplenishmentBundle, error) {
	f.calls = append(f.calls, "replenishment")
	return f.bundle, f.bundleErr
}

func testConfig() config.Config {
	return config.Config{
		Service: config.ServiceConfig{BaseURL: "http://test", TimeoutSec: 1},
		UI:      config.UIConfig{HistoryDays: 30, ForecastDays: 7, AutoReturnDelayMS: 1},
	}
}

func newTestModel(svc Service) Model {
	m := New(svc, testConfig(), zerolog.Nop())
	m.now = func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) }
	return m
}

// step runs one command synchronously and feeds the result back through
// Update, unrolling batches, mirroring what the Bubble Tea runtime does.
func step(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			m = step(t, m, sub)
		}
		return m
	}
	next, nextCmd := m.Update(msg)
	m = next.(Model)
	if nextCmd != nil {
		return step(t, m, nextCmd)
	}
	return m
}

func keyMsg(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// ---------------------------------------------------------------------------
// Tab state machine
// ---------------------------------------------------------------------------

func TestInitialTabIsForecast(t *testing.T) {
	m := newTestModel(&fakeService{})
	if m.activeTab != project.TabForecast {
		t.Fatalf("initial tab = %s, want forecast", m.activeTab)
	}
}

func TestTabEntryTriggersTheRightFetch(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m.reg.Select("A")

	cases := []struct {
		tab  project.Tab
		want string
	}{
		{project.TabHistory, "history"},
		{project.TabForecast, "forecast"},
		{project.TabReplenishment, "replenishment"},
	}
	for _, tc := range cases {
		svc.calls = nil
		next, cmd := m.switchTab(tc.tab)
		if cmd == nil {
			t.Fatalf("entering %s should issue a fetch", tc.tab)
		}
		cmd()
		if len(svc.calls) != 1 || svc.calls[0] != tc.want {
			t.Fatalf("entering %s called %v, want [%s]", tc.tab, svc.calls, tc.want)
		}
		m = next
	}

	svc.calls = nil
	_, cmd := m.switchTab(project.TabTransaction)
	if cmd != nil {
		t.Fatal("transaction tab is a pure form surface; no fetch on entry")
	}
}

func TestNoFetchWithoutSelectedSku(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	if _, cmd := m.switchTab(project.TabHistory); cmd != nil {
		t.Fatal("series fetch without a selected SKU must be a no-op")
	}
	if _, cmd := m.switchTab(project.TabReplenishment); cmd != nil {
		t.Fatal("replenishment fetch without a selected SKU must be a no-op")
	}
}

func TestWindowChangeRefetchesActiveTab(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m.reg.Select("A")
	m.activeTab = project.TabHistory

	m, cmd := update(t, m, keyMsg("3"))
	if m.historyDays != 90 {
		t.Fatalf("historyDays = %d, want 90", m.historyDays)
	}
	if cmd == nil {
		t.Fatal("window change on the active tab must refetch")
	}
	cmd()
	if len(svc.calls) != 1 || svc.calls[0] != "history" {
		t.Fatalf("calls = %v, want [history]", svc.calls)
	}
}

func TestSkuChangeRefetchesActiveTab(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m.reg.Select("A")
	m.activeTab = project.TabReplenishment

	next, cmd := m.selectSku("B")
	if next.txDraft.SKUID != "B" {
		t.Fatalf("draft sku = %q, want B", next.txDraft.SKUID)
	}
	if cmd == nil {
		t.Fatal("sku change must refetch for the active tab")
	}
	cmd()
	if len(svc.calls) != 1 || svc.calls[0] != "replenishment" {
		t.Fatalf("calls = %v, want [replenishment]", svc.calls)
	}
}

// ---------------------------------------------------------------------------
// Fetch coordinator
// ---------------------------------------------------------------------------

func TestSkusLoadedSeedsSelectionAndDraftOnce(t *testing.T) {
	svc := &fakeService{
		skus: []api.SKU{{SKUID: "A", SKUName: "Widget", CurrentStock: 40, TotalRecords: 12}},
		forecast: api.ForecastResponse{
			Forecast: []api.ForecastPoint{{Date: "2024-01-01", PredictedSales: 5}},
		},
	}
	m := newTestModel(svc)

	m = step(t, m, loadSkusCmd(m.svc))
	if m.reg.SelectedID() != "A" {
		t.Fatalf("selected = %q, want default A", m.reg.SelectedID())
	}
	if m.txDraft.SKUID != "A" {
		t.Fatalf("draft sku = %q, want seeded A", m.txDraft.SKUID)
	}

	// Unchanged list, existing selection: no reselect, no draft churn.
	m.reg.Select("A")
	m.txDraft.SKUID = "A"
	m = step(t, m, loadSkusCmd(m.svc))
	if m.reg.SelectedID() != "A" {
		t.Fatalf("selection changed on idempotent reload: %q", m.reg.SelectedID())
	}
}

func TestSkusLoadFailureKeepsRegistry(t *testing.T) {
	svc := &fakeService{skus: []api.SKU{{SKUID: "A", SKUName: "Widget"}}}
	m := newTestModel(svc)
	m = step(t, m, loadSkusCmd(m.svc))

	svc.skusErr = errors.New("boom")
	m, _ = update(t, m, skusLoadedMsg{err: svc.skusErr})
	if len(m.reg.List()) != 1 {
		t.Fatal("registry must keep its previous value on load failure")
	}
}

func TestSeriesSuccessProjectsAndClearsLoading(t *testing.T) {
	svc := &fakeService{
		history: api.HistoryResponse{
			History:      []api.TimeSeriesPoint{{Date: "2024-01-01", SalesQty: 3, StockLevel: 37}},
			CurrentStock: 37,
		},
	}
	m := newTestModel(svc)
	m.reg.Select("A")
	m.activeTab = project.TabHistory

	m, cmd := m.startSeriesFetch()
	if !m.loading {
		t.Fatal("loading should be set while the fetch is outstanding")
	}
	m = step(t, m, cmd)
	if m.loading {
		t.Fatal("loading should clear when the fetch lands")
	}
	if len(m.rows) != 1 || m.historyStock != 37 {
		t.Fatalf("rows = %v, stock = %d", m.rows, m.historyStock)
	}
	if len(m.chart.Labels) != 1 || len(m.chart.Series) != 2 {
		t.Fatalf("chart shape = %+v", m.chart)
	}
}

func TestSeriesFailureClearsDataAndSurfacesMessage(t *testing.T) {
	svc := &fakeService{forecastErr: &api.APIError{Status: 500, Detail: "model not trained"}}
	m := newTestModel(svc)
	m.reg.Select("A")
	m.rows = []project.Row{{Date: "old"}}

	m, cmd := m.startSeriesFetch()
	m = step(t, m, cmd)
	if len(m.rows) != 0 {
		t.Fatalf("rows = %v, want cleared to empty", m.rows)
	}
	if m.rows == nil {
		t.Fatal("rows must be empty, not nil")
	}
	if m.fetchErr != "model not trained" {
		t.Fatalf("fetchErr = %q, want surfaced detail", m.fetchErr)
	}
	if m.loading {
		t.Fatal("loading must clear on failure")
	}
}

func TestStaleSeriesResponseDiscarded(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m.reg.Select("A")
	m.activeTab = project.TabForecast

	// First fetch issued, then a second one before the first resolves.
	m, _ = m.startSeriesFetch()
	staleSeq := m.seriesSeq
	m, _ = m.startSeriesFetch()

	fresh := []project.Row{{Date: "2024-01-02", PredictedSales: 9}}
	m.rows = fresh

	stale := seriesLoadedMsg{
		seq: staleSeq,
		tab: project.TabForecast,
		forecast: api.ForecastResponse{
			Forecast: []api.ForecastPoint{{Date: "1999-01-01", PredictedSales: 1}},
		},
	}
	m, _ = update(t, m, stale)
	if len(m.rows) != 1 || m.rows[0].Date != "2024-01-02" {
		t.Fatalf("stale response overwrote state: %v", m.rows)
	}
	if !m.loading {
		t.Fatal("loading belongs to the in-flight fetch; stale arrival must not clear it")
	}
}

func TestReplenishmentFailureLeavesBothHalves(t *testing.T) {
	svc := &fakeService{
		bundle: api.ReplenishmentBundle{
			Settings:       api.ReplenishmentSettings{LeadTimeDays: 7, MinOrderQty: 10},
			Recommendation: api.ReplenishmentRecommendation{OrderQuantity: 60},
		},
	}
	m := newTestModel(svc)
	m.reg.Select("A")

	m, cmd := m.startReplenishmentFetch()
	m = step(t, m, cmd)
	if m.repSettings == nil || m.repRec == nil {
		t.Fatal("successful compound fetch should set both halves")
	}
	if m.repForm.LeadTimeDays != 7 {
		t.Fatalf("draft not reseeded: %+v", m.repForm)
	}

	svc.bundleErr = &api.APIError{Status: 503, Detail: "service down"}
	m, cmd = m.startReplenishmentFetch()
	m = step(t, m, cmd)
	if m.repError == "" {
		t.Fatal("failure must set a non-empty error message")
	}
	if m.repSettings.LeadTimeDays != 7 || m.repRec.OrderQuantity != 60 {
		t.Fatal("failure must leave both halves at their pre-call values")
	}
}

// ---------------------------------------------------------------------------
// Transaction recorder
// ---------------------------------------------------------------------------

func TestSubmitWithoutSkuValidatesFirst(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m.activeTab = project.TabTransaction
	m.txDraft.SalesQty = 5

	m, cmd := update(t, m, keyMsg("enter"))
	if cmd != nil || len(svc.calls) != 0 {
		t.Fatal("validation failure must never issue a network call")
	}
	if m.txError != "Please select a SKU" {
		t.Fatalf("txError = %q", m.txError)
	}
}

func TestSubmitZeroQuantitiesValidates(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m.activeTab = project.TabTransaction
	m.txDraft.SKUID = "A"

	m, cmd := update(t, m, keyMsg("enter"))
	if cmd != nil || len(svc.calls) != 0 {
		t.Fatal("zero-quantity draft must never issue a network call")
	}
	if m.txError != "Enter either sales qty or purchase qty" {
		t.Fatalf("txError = %q", m.txError)
	}
}

func TestTransactionSuccessFlow(t *testing.T) {
	svc := &fakeService{
		skus:     []api.SKU{{SKUID: "A", SKUName: "Widget", CurrentStock: 30}},
		txResult: api.TransactionResult{PreviousStock: 40, NewStockLevel: 30},
		history: api.HistoryResponse{
			History: []api.TimeSeriesPoint{{Date: "2024-01-02", SalesQty: 10, StockLevel: 30}},
		},
	}
	m := newTestModel(svc)
	m.reg.Replace([]api.SKU{{SKUID: "A", SKUName: "Widget", CurrentStock: 40}})
	m.activeTab = project.TabTransaction
	m.txDraft = api.TransactionDraft{SKUID: "A", SalesQty: 10, TransactionDate: "2024-01-02"}

	m, cmd := update(t, m, keyMsg("enter"))
	if !m.txBusy {
		t.Fatal("busy flag is the reentrancy guard; it must be set in flight")
	}
	if _, dup := update(t, m, keyMsg("enter")); dup != nil {
		t.Fatal("second submit while busy must be ignored")
	}

	// Resolve the POST plus the cascading refresh and delayed transition.
	m = step(t, m, cmd)

	if m.txError != "" {
		t.Fatalf("txError = %q", m.txError)
	}
	prev := strings.Index(m.txMessage, "40")
	next := strings.Index(m.txMessage, "30")
	if prev == -1 || next == -1 || prev > next {
		t.Fatalf("success message %q must contain previous then new stock", m.txMessage)
	}
	if m.txDraft.SalesQty != 0 || m.txDraft.PurchaseQty != 0 {
		t.Fatalf("quantities not reset: %+v", m.txDraft)
	}
	if m.txDraft.TransactionDate != "2024-01-02" {
		t.Fatalf("date = %q, want reset to today", m.txDraft.TransactionDate)
	}
	if m.activeTab != project.TabHistory {
		t.Fatalf("active tab = %s, want history after the delay", m.activeTab)
	}
	joined := strings.Join(svc.calls, ",")
	if !strings.Contains(joined, "record") || !strings.Contains(joined, "skus") || !strings.Contains(joined, "history") {
		t.Fatalf("calls = %v, want record + sku refresh + history entry fetch", svc.calls)
	}
}

func TestTransactionFailureKeepsDraft(t *testing.T) {
	svc := &fakeService{txErr: &api.APIError{Status: 400, Detail: "Insufficient stock"}}
	m := newTestModel(svc)
	m.activeTab = project.TabTransaction
	m.txDraft = api.TransactionDraft{SKUID: "A", SalesQty: 99, TransactionDate: "2024-01-02"}

	m, cmd := update(t, m, keyMsg("enter"))
	m = step(t, m, cmd)
	if m.txError != "Insufficient stock" {
		t.Fatalf("txError = %q", m.txError)
	}
	if m.txDraft.SalesQty != 99 {
		t.Fatal("draft must stay intact for correction")
	}
	if m.txBusy {
		t.Fatal("busy flag must clear on failure")
	}
}

func TestQuantityEditingClampsAtZero(t *testing.T) {
	m := newTestModel(&fakeService{})
	m.activeTab = project.TabTransaction
	m.txField = txFieldSales

	m, _ = update(t, m, keyMsg("left"))
	if m.txDraft.SalesQty != 0 {
		t.Fatalf("sales qty = %d, decrement must clamp at 0", m.txDraft.SalesQty)
	}
	m, _ = update(t, m, keyMsg("4"))
	m, _ = update(t, m, keyMsg("2"))
	if m.txDraft.SalesQty != 42 {
		t.Fatalf("sales qty = %d, want 42", m.txDraft.SalesQty)
	}
}

// ---------------------------------------------------------------------------
// Replenishment settings editor
// ---------------------------------------------------------------------------

func editingModel(svc Service) Model {
	m := newTestModel(svc)
	m.reg.Select("A")
	m.activeTab = project.TabReplenishment
	settings := api.ReplenishmentSettings{LeadTimeDays: 7, MinOrderQty: 10, ReorderPoint: 25, SafetyStock: 5, TargetStockLevel: 100}
	m.repSettings = &settings
	m.repForm = settings
	m.repEditing = true
	return m
}

func TestSettingsFieldsClampToDeclaredMinimums(t *testing.T) {
	m := editingModel(&fakeService{})
	m.repForm.LeadTimeDays = 1
	m.repField = repFieldLeadTime

	m, _ = update(t, m, keyMsg("left"))
	if m.repForm.LeadTimeDays != 1 {
		t.Fatalf("lead_time_days = %d, must clamp at 1", m.repForm.LeadTimeDays)
	}

	m.repField = repFieldSafetyStock
	m.repForm.SafetyStock = 0
	m, _ = update(t, m, keyMsg("left"))
	if m.repForm.SafetyStock != 0 {
		t.Fatalf("safety_stock = %d, must clamp at 0", m.repForm.SafetyStock)
	}
}

func TestSettingsSaveRefetchesReplenishment(t *testing.T) {
	svc := &fakeService{
		saveMessage: "Settings updated",
		bundle: api.ReplenishmentBundle{
			Settings:       api.ReplenishmentSettings{LeadTimeDays: 9, MinOrderQty: 10},
			Recommendation: api.ReplenishmentRecommendation{OrderQuantity: 10},
		},
	}
	m := editingModel(svc)
	m.repForm.LeadTimeDays = 9

	m, cmd := update(t, m, keyMsg("enter"))
	m = step(t, m, cmd)

	if m.repMessage != "Settings updated" {
		t.Fatalf("repMessage = %q", m.repMessage)
	}
	if m.repEditing {
		t.Fatal("edit mode should close after a successful save")
	}
	joined := strings.Join(svc.calls, ",")
	if joined != "save-settings,replenishment" {
		t.Fatalf("calls = %v, want save then compound refetch", svc.calls)
	}
	if m.repSettings.LeadTimeDays != 9 {
		t.Fatalf("settings after refetch = %+v", m.repSettings)
	}
}

func TestSettingsSaveFailureKeepsDraft(t *testing.T) {
	svc := &fakeService{saveErr: &api.APIError{Status: 422, Detail: "reorder point above target"}}
	m := editingModel(svc)
	m.repForm.ReorderPoint = 500

	m, cmd := update(t, m, keyMsg("enter"))
	m = step(t, m, cmd)
	if m.repError != "reorder point above target" {
		t.Fatalf("repError = %q", m.repError)
	}
	if m.repForm.ReorderPoint != 500 {
		t.Fatal("draft must stay untouched on failure")
	}
	if !m.repEditing {
		t.Fatal("edit mode stays open for correction")
	}
}

func TestSettingsEscRestoresLastFetchedValues(t *testing.T) {
	m := editingModel(&fakeService{})
	m.repForm.LeadTimeDays = 42

	m, _ = update(t, m, keyMsg("esc"))
	if m.repEditing {
		t.Fatal("esc should leave edit mode")
	}
	if m.repForm.LeadTimeDays != 7 {
		t.Fatalf("lead_time_days = %d, want reseeded 7", m.repForm.LeadTimeDays)
	}
}

// ---------------------------------------------------------------------------
// SKU picker
// ---------------------------------------------------------------------------

func TestPickerSelectsSkuAndRefetches(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc)
	m.reg.Replace([]api.SKU{
		{SKUID: "A", SKUName: "Widget"},
		{SKUID: "B", SKUName: "Gadget"},
	})
	m.activeTab = project.TabForecast

	m, _ = update(t, m, keyMsg("s"))
	if !m.pickerOpen {
		t.Fatal("s should open the picker")
	}

	m, _ = update(t, m, keyMsg("g"))
	m, _ = update(t, m, keyMsg("a"))
	m, cmd := update(t, m, keyMsg("enter"))
	if m.pickerOpen {
		t.Fatal("enter should close the picker")
	}
	if m.reg.SelectedID() != "B" {
		t.Fatalf("selected = %q, want Gadget's B", m.reg.SelectedID())
	}
	if cmd == nil {
		t.Fatal("picking a SKU must refetch the active tab")
	}
	cmd()
	if len(svc.calls) != 1 || svc.calls[0] != "forecast" {
		t.Fatalf("calls = %v, want [forecast]", svc.calls)
	}
}
