package api

// Wire types for the inventory/forecasting service. Field names mirror the
// JSON the service speaks; nothing here is computed client-side.

// SKU is one stock-keeping unit as returned by GET /skus.
type SKU struct {
	SKUID        string `json:"sku_id"`
	SKUName      string `json:"sku_name"`
	CurrentStock int    `json:"current_stock"`
	TotalRecords int    `json:"total_records"`
}

// TimeSeriesPoint is one row of the sales/purchase/stock history.
type TimeSeriesPoint struct {
	Date        string `json:"date"`
	SalesQty    int    `json:"sales_qty"`
	PurchaseQty int    `json:"purchase_qty"`
	StockLevel  int    `json:"stock_level"`
}

// ForecastPoint is one predicted-demand row.
type ForecastPoint struct {
	Date           string  `json:"date"`
	PredictedSales float64 `json:"predicted_sales"`
}

// HistoryResponse is the GET /history payload.
type HistoryResponse struct {
	History      []TimeSeriesPoint `json:"history"`
	CurrentStock int               `json:"current_stock"`
}

// ForecastResponse is the GET /forecast payload. The meta fields are
// recomputed by the server on every call and never persisted here.
type ForecastResponse struct {
	Forecast            []ForecastPoint `json:"forecast"`
	CurrentStock        int             `json:"current_stock"`
	TotalForecastDemand float64         `json:"total_forecast_demand"`
	StockStatus         string          `json:"stock_status"`
}

// TransactionDraft is the locally-edited transaction before submission.
// At least one of SalesQty/PurchaseQty must be nonzero to be submittable.
type TransactionDraft struct {
	SKUID           string `json:"sku_id"`
	SalesQty        int    `json:"sales_qty"`
	PurchaseQty     int    `json:"purchase_qty"`
	TransactionDate string `json:"transaction_date"`
}

// TransactionResult is the POST /record-transaction success payload.
type TransactionResult struct {
	PreviousStock int `json:"previous_stock"`
	NewStockLevel int `json:"new_stock_level"`
}

// ReplenishmentSettings are server-owned reorder parameters, mirrored
// locally as an editable draft.
type ReplenishmentSettings struct {
	LeadTimeDays     int `json:"lead_time_days"`
	MinOrderQty      int `json:"min_order_qty"`
	ReorderPoint     int `json:"reorder_point"`
	SafetyStock      int `json:"safety_stock"`
	TargetStockLevel int `json:"target_stock_level"`
}

// ReplenishmentRecommendation is the server's read-only reorder advice.
type ReplenishmentRecommendation struct {
	ReorderNeeded            bool    `json:"reorder_needed"`
	OrderQuantity            int     `json:"order_quantity"`
	Urgency                  string  `json:"urgency"`
	ProjectedStockAtLeadTime float64 `json:"projected_stock_at_lead_time"`
	DemandDuringLeadTime     float64 `json:"demand_during_lead_time"`
	SuggestedOrderDate       string  `json:"suggested_order_date"`
	ExpectedArrivalDate      string  `json:"expected_arrival_date"`
	Message                  string  `json:"message"`
}

// ReplenishmentBundle pairs the two replenishment reads that are always
// fetched together. Either both fields are valid or the fetch failed.
type ReplenishmentBundle struct {
	Settings       ReplenishmentSettings
	Recommendation ReplenishmentRecommendation
}
