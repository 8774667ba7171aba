package domain

// KPISummary holds the aggregate scalars the dashboard's KPI cards show.
// All fields are zero for an empty table; AvgDiscount and AvgOrderValue are
// defined as 0 rather than NaN when there are no rows. The source has no
// order-ID column, so Orders is the row count.
type KPISummary struct {
	TotalSales    float64 `json:"total_sales"`
	TotalProfit   float64 `json:"total_profit"`
	TotalQuantity int64   `json:"total_quantity"`
	AvgDiscount   float64 `json:"avg_discount"`
	Orders        int64   `json:"orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// DateSales is one point of the sales-over-time chart.
type DateSales struct {
	Date  string  `json:"date"` // 2006-01-02
	Sales float64 `json:"sales"`
}

// MonthSales is one point of the monthly revenue trend. Months with no
// orders between the dataset's first and last month appear with zero sales.
type MonthSales struct {
	Month string  `json:"month"` // 2006-01
	Sales float64 `json:"sales"`
}

// ProductSales is one bar of the top-products chart.
type ProductSales struct {
	Product string  `json:"product"`
	Sales   float64 `json:"sales"`
}

// RegionSales is one slice of the sales-by-region chart.
type RegionSales struct {
	Region string  `json:"region"`
	Sales  float64 `json:"sales"`
}

// CategorySales is one bar of the sales-by-category chart, with the profit
// margin the UI annotates each bar with.
type CategorySales struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
	Profit   float64 `json:"profit"`
	Margin   float64 `json:"margin"`
}

// SegmentSales is one slice of the sales-by-segment chart.
type SegmentSales struct {
	Segment string  `json:"segment"`
	Sales   float64 `json:"sales"`
}

// CustomerSales is one row of the top-customers table.
type CustomerSales struct {
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Sales        float64 `json:"sales"`
}
