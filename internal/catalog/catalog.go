// Package catalog holds the fixed product list offered by the store.
// Products are compiled into the binary; there is no admin surface for
// editing them and stock is never decremented.
package catalog

import "github.com/iliyamo/mercado-storefront/internal/model"

func img(p string) *string { return &p }

var products = []model.Product{
	{ID: 1, Name: "Arroz 1kg", PriceCents: 799, ImageURL: img("images/arroz.png"), Stock: 50},
	{ID: 2, Name: "Feijão 1kg", PriceCents: 899, ImageURL: img("images/feijao.png"), Stock: 50},
	{ID: 3, Name: "Macarrão 500g", PriceCents: 599, ImageURL: img("images/macarrao.png"), Stock: 60},
	{ID: 4, Name: "Leite 1L", PriceCents: 549, ImageURL: img("images/leite.png"), Stock: 70},
	{ID: 5, Name: "Café 500g", PriceCents: 1899, ImageURL: img("images/cafe.png"), Stock: 40},
	{ID: 6, Name: "Açúcar 1kg", PriceCents: 489, ImageURL: img("images/açucar.png"), Stock: 80},
	{ID: 7, Name: "Óleo 900ml", PriceCents: 999, ImageURL: img("images/oleo.png"), Stock: 50},
	{ID: 8, Name: "Biscoito 200g", PriceCents: 399, ImageURL: img("images/biscoito.png"), Stock: 90},
	{ID: 9, Name: "Molho de Tomate 340g", PriceCents: 499, ImageURL: img("images/molho de tomate.png"), Stock: 70},
	{ID: 10, Name: "Farinha de Trigo 1kg", PriceCents: 699, ImageURL: img("images/farinha de trigo.png"), Stock: 60},
	{ID: 11, Name: "Sal 1kg", PriceCents: 299, ImageURL: img("images/sal.png"), Stock: 100},
	{ID: 12, Name: "Manteiga 200g", PriceCents: 1299, ImageURL: img("images/manteiga.png"), Stock: 40},
	{ID: 13, Name: "Queijo Mussarela 200g", PriceCents: 1599, ImageURL: img("images/queijo mussarela.png"), Stock: 35},
	{ID: 14, Name: "Presunto 200g", PriceCents: 1399, ImageURL: img("images/presunto.png"), Stock: 35},
	{ID: 15, Name: "Refrigerante 2L", PriceCents: 999, ImageURL: img("images/refrigerante.png"), Stock: 80},
	{ID: 16, Name: "Água Mineral 1.5L", PriceCents: 399, ImageURL: img("images/agua.png"), Stock: 120},
	{ID: 17, Name: "Suco 1L", PriceCents: 699, ImageURL: img("images/suco.png"), Stock: 70},
	{ID: 18, Name: "Cereal 300g", PriceCents: 1499, ImageURL: img("images/cereal.png"), Stock: 40},
	{ID: 19, Name: "Chocolate 100g", PriceCents: 799, ImageURL: img("images/chocolate.png"), Stock: 50},
	{ID: 20, Name: "Arroz Integral 1kg", PriceCents: 999, ImageURL: img("images/arroz integral.png"), Stock: 45},
}

// Static is the built-in catalog. It is safe for concurrent use because
// it never changes after initialisation.
type Static struct{}

// New returns the built-in catalog.
func New() Static { return Static{} }

// List returns a copy of every product in id order.
func (Static) List() []model.Product {
	out := make([]model.Product, len(products))
	copy(out, products)
	return out
}

// Get looks up a product by id.
func (Static) Get(id uint32) (model.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}
