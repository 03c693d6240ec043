package model

// Product is a catalog entry. Prices are in minor currency units
// (cents). Stock is a static ceiling used to validate cart quantities;
// nothing in the service ever decrements it.
type Product struct {
	ID         uint32  `json:"id"`
	Name       string  `json:"name"`
	PriceCents int64   `json:"price_cents"`
	ImageURL   *string `json:"image_url,omitempty"`
	Stock      uint32  `json:"stock"`
}
