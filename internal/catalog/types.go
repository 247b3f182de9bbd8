package catalog

// Item is one rentable costume type. Items are loaded once per session
// and never mutated afterwards; Quantity is the total owned stock, not
// a live availability figure.
type Item struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Size      string   `json:"size"`
	WeightKg  *float64 `json:"weight_kg,omitempty"` // nil when unknown
	HeightCm  *float64 `json:"height_cm,omitempty"` // nil when unknown
	Quantity  int      `json:"quantity"`
	RentPrice float64  `json:"rent_price"`
	SalePrice float64  `json:"sale_price"`
	Status    string   `json:"status"`
}

// CatalogFile is the on-disk layout of the catalog JSON file.
type CatalogFile struct {
	Mascots []Item `json:"mascots"`
}
