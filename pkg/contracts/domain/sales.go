package domain

import (
	"time"
)

// SalesRecord is one cleaned row of the canonical sales table. All fields are
// well-typed by the time a record exists: the loader owns every parse, so
// downstream code never re-checks types. The struct is comparable, which the
// loader relies on for exact-duplicate detection.
type SalesRecord struct {
	OrderDate    time.Time `json:"order_date" csv:"Order Date"`
	Category     string    `json:"category" csv:"Category"`
	SubCategory  string    `json:"sub_category" csv:"Sub-Category"`
	Region       string    `json:"region" csv:"Region"`
	Segment      string    `json:"segment" csv:"Segment"`
	CustomerID   string    `json:"customer_id" csv:"Customer ID"`
	CustomerName string    `json:"customer_name" csv:"Customer Name"`
	Product      string    `json:"product" csv:"Product Name"`
	Sales        float64   `json:"sales" csv:"Sales"`
	Profit       float64   `json:"profit" csv:"Profit"`
	Discount     float64   `json:"discount" csv:"Discount"`
	Quantity     int64     `json:"quantity" csv:"Quantity"`
}

// ProfitMargin returns profit as a fraction of sales, 0 when sales are 0.
func (r SalesRecord) ProfitMargin() float64 {
	if r.Sales == 0 {
		return 0
	}
	return r.Profit / r.Sales
}
