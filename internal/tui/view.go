package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stockdeck/internal/api"
	"stockdeck/internal/config"
	"stockdeck/internal/project"
	"stockdeck/internal/tui/widgets"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.pickerOpen {
		b.WriteString(overlayStyle.Render(m.pickerList.View()))
		b.WriteString("\n")
		b.WriteString(footerStyle.Render("type to filter · enter select · esc close"))
		return b.String()
	}

	switch m.activeTab {
	case project.TabHistory, project.TabForecast:
		b.WriteString(m.seriesView())
	case project.TabTransaction:
		b.WriteString(m.transactionView())
	case project.TabReplenishment:
		b.WriteString(m.replenishmentView())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, len(tabOrder))
	for _, tab := range tabOrder {
		if tab == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(tabTitle(tab)))
		} else {
			tabs = append(tabs, tabStyle.Render(tabTitle(tab)))
		}
	}
	sku := m.reg.SelectedID()
	if sku == "" {
		sku = "no SKU"
	}
	right := statusStyle.Render("SKU: " + sku)
	return titleStyle.Render(appName) + "  " + lipgloss.JoinHorizontal(lipgloss.Center, tabs...) + "  " + right
}

func (m Model) renderStatusLine() string {
	switch {
	case m.fetchErr != "" && (m.activeTab == project.TabHistory || m.activeTab == project.TabForecast):
		return errorStyle.Render(m.fetchErr)
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) renderFooter() string {
	parts := make([]string, 0, 8)
	for _, bind := range m.keys.ShortHelp() {
		parts = append(parts, bind.Help().Key+" "+bind.Help().Desc)
	}
	return footerStyle.Render(strings.Join(parts, " · "))
}

func (m Model) contentWidth() int {
	if m.width == 0 {
		return 80
	}
	w := m.width - 4
	if w < 40 {
		return 40
	}
	return w
}

// ---------------------------------------------------------------------------
// History / Forecast
// ---------------------------------------------------------------------------

func (m Model) seriesView() string {
	if m.loading {
		return m.spin.View() + " Loading data…"
	}
	if len(m.rows) == 0 {
		return statusStyle.Render("No data available.")
	}

	var sections []string
	sections = append(sections, m.seriesCards())

	chart := widgets.LineChart{
		Title: sectionTitleStyle.Render(tabTitle(m.activeTab) + " — " + m.windowLabel()),
		Chart: m.chart,
	}
	sections = append(sections, sectionStyle.Render(chart.Render(m.contentWidth()-4, 24)))
	sections = append(sections, sectionStyle.Render(m.seriesTable().Render(m.contentWidth()-4)))
	return strings.Join(sections, "\n")
}

func (m Model) windowLabel() string {
	days := m.historyDays
	choices := config.HistoryWindows()
	if m.activeTab == project.TabForecast {
		days = m.forecastDays
		choices = config.ForecastWindows()
	}
	parts := make([]string, 0, len(choices))
	for i, d := range choices {
		label := fmt.Sprintf("%d:%dd", i+1, d)
		if d == days {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

func (m Model) seriesCards() string {
	cur := m.reg.Current()
	if m.activeTab == project.TabForecast {
		statusToken := project.ClassifyStockStatus(m.forecast.stockStatus)
		statusCard := renderCard("Status", m.forecast.stockStatus)
		if strings.HasPrefix(statusToken, "reorder") || statusToken == "low-stock" {
			statusCard = renderCardStyled("Status", warnStyle.Render(m.forecast.stockStatus))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top,
			renderCard("Current Stock", strconv.Itoa(m.forecast.currentStock)),
			renderCard("Forecast Demand", fmt.Sprintf("%.1f", m.forecast.totalForecastDemand)),
			statusCard,
		)
	}
	cards := []string{renderCard("Current Stock", strconv.Itoa(m.historyStock))}
	if cur != nil {
		cards = append(cards,
			renderCard("SKU", cur.SKUName),
			renderCard("Records", strconv.Itoa(cur.TotalRecords)),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) seriesTable() widgets.Table {
	if m.activeTab == project.TabForecast {
		rows := make([][]string, 0, len(m.rows))
		for _, r := range m.rows {
			rows = append(rows, []string{r.Date, fmt.Sprintf("%.2f", r.PredictedSales)})
		}
		return widgets.Table{Columns: []string{"Date", "Predicted Sales"}, Rows: rows, MaxRows: 12}
	}
	rows := make([][]string, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, []string{
			r.Date,
			strconv.Itoa(r.SalesQty),
			strconv.Itoa(r.PurchaseQty),
			strconv.Itoa(r.StockLevel),
		})
	}
	return widgets.Table{Columns: []string{"Date", "Sales Qty", "Purchase Qty", "Stock Level"}, Rows: rows, MaxRows: 12}
}

func renderCard(label, value string) string {
	return renderCardStyled(label, cardValueStyle.Render(value))
}

func renderCardStyled(label, styledValue string) string {
	return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + styledValue)
}

// ---------------------------------------------------------------------------
// Transaction tab
// ---------------------------------------------------------------------------

func (m Model) transactionView() string {
	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Record Sales / Purchase Transaction"))
	b.WriteString("\n")
	target := m.txDraft.SKUID
	if target == "" {
		target = "selected SKU"
	}
	b.WriteString(statusStyle.Render("Update inventory for " + target))
	b.WriteString("\n\n")

	date := m.txDraft.TransactionDate
	if date == "" {
		date = m.today()
	}
	fields := []struct {
		label string
		value string
	}{
		{"Transaction Date", date},
		{"Sales Quantity", strconv.Itoa(m.txDraft.SalesQty)},
		{"Purchase Quantity", strconv.Itoa(m.txDraft.PurchaseQty)},
	}
	for i, f := range fields {
		b.WriteString(renderField(f.label, f.value, i == m.txField && !m.txBusy))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.txBusy {
		b.WriteString(m.spin.View() + " Recording…")
	} else {
		b.WriteString(statusStyle.Render("enter to record"))
	}
	if m.txError != "" {
		b.WriteString("\n" + errorStyle.Render(m.txError))
	}
	if m.txMessage != "" {
		b.WriteString("\n" + successStyle.Render(m.txMessage))
	}

	if cur := m.reg.Current(); cur != nil {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			renderCard("Current Stock", strconv.Itoa(cur.CurrentStock)),
			renderCard("SKU Name", cur.SKUName),
			renderCard("Total Records", strconv.Itoa(cur.TotalRecords)),
		))
	}
	return sectionStyle.Render(b.String())
}

func renderField(label, value string, focused bool) string {
	line := fieldLabelStyle.Render(label) + " " + value
	if focused {
		return fieldFocusedStyle.Render("> ") + line
	}
	return "  " + line
}

// ---------------------------------------------------------------------------
// Replenishment tab
// ---------------------------------------------------------------------------

func (m Model) replenishmentView() string {
	var sections []string

	head := sectionTitleStyle.Render("Replenishment Planning")
	sub := statusStyle.Render("Automated reorder recommendations for " + m.reg.SelectedID())
	sections = append(sections, head+"\n"+sub)

	if m.repLoading && m.repRec == nil {
		sections = append(sections, m.spin.View()+" Loading…")
		return strings.Join(sections, "\n\n")
	}
	if m.repError != "" {
		sections = append(sections, errorStyle.Render(m.repError))
	}

	if rec := m.repRec; rec != nil {
		reorder := "No"
		if rec.ReorderNeeded {
			reorder = warnStyle.Render("Yes")
		}
		urgency := rec.Urgency
		if urgency == "" {
			urgency = "N/A"
		}
		rank := project.UrgencyRank(rec.Urgency)
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			renderCardStyled("Reorder Needed", reorder),
			renderCard("Order Quantity", strconv.Itoa(rec.OrderQuantity)),
			renderCardStyled("Urgency", urgencyStyle(rank).Render(project.UrgencyGlyph(rec.Urgency)+" "+urgency)),
			renderCard("Projected Stock", fmt.Sprintf("%.0f", rec.ProjectedStockAtLeadTime)),
		))
		sections = append(sections, m.timelineView(rec))
	}

	if m.repSettings != nil {
		sections = append(sections, m.settingsPanel())
		if m.repRec != nil {
			gauge := widgets.Gauge{Gauge: project.NewGauge(*m.repSettings, *m.repRec)}
			sections = append(sections, sectionStyle.Render(
				sectionTitleStyle.Render("Stock Level Overview")+"\n"+gauge.Render(m.contentWidth()-8)))
		}
	}
	return strings.Join(sections, "\n\n")
}

func (m Model) timelineView(rec *api.ReplenishmentRecommendation) string {
	orderBy := rec.SuggestedOrderDate
	if orderBy == "" {
		orderBy = "—"
	}
	arrival := rec.ExpectedArrivalDate
	if arrival == "" {
		arrival = "—"
	}
	line := fmt.Sprintf("Order By %s   →   Lead Time Demand %.0f units   →   Expected Arrival %s",
		orderBy, rec.DemandDuringLeadTime, arrival)
	body := sectionTitleStyle.Render("Order Timeline") + "\n" + line
	if rec.Message != "" {
		body += "\n" + statusStyle.Render(rec.Message)
	}
	return sectionStyle.Render(body)
}

func (m Model) settingsPanel() string {
	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("Current Settings"))
	if !m.repEditing {
		b.WriteString(statusStyle.Render("  (e to edit)"))
	}
	b.WriteString("\n")

	values := []struct {
		label string
		value int
		unit  string
	}{
		{"Lead Time", m.repForm.LeadTimeDays, " days"},
		{"Min Order Qty", m.repForm.MinOrderQty, ""},
		{"Reorder Point", m.repForm.ReorderPoint, ""},
		{"Safety Stock", m.repForm.SafetyStock, ""},
		{"Target Stock", m.repForm.TargetStockLevel, ""},
	}
	for i, v := range values {
		focused := m.repEditing && i == m.repField
		b.WriteString(renderField(v.label, strconv.Itoa(v.value)+v.unit, focused))
		b.WriteString("\n")
	}

	if m.repEditing {
		if m.repSaving {
			b.WriteString(m.spin.View() + " Saving…")
		} else {
			b.WriteString(statusStyle.Render("enter save · esc cancel"))
		}
	}
	if m.repMessage != "" {
		b.WriteString("\n" + successStyle.Render(m.repMessage))
	}
	return sectionStyle.Render(b.String())
}
