package sources

import (
	"time"

	"github.com/precolista/backend/internal/domain"
)

// referencePrice is one synthetic staple-item price used when a retailer
// yields no real data for a term.
type referencePrice struct {
	Title    string
	Quantity float64
	Unit     domain.Unit
	Price    float64
}

// referencePrices holds typical shelf prices for staple items, by
// normalized item name. Values are placeholders for display, not market
// data; aggregation always prefers real offers over these.
var referencePrices = map[string]referencePrice{
	"arroz":   {Title: "Arroz branco tipo 1 5kg (preço de referência)", Quantity: 1, Unit: domain.UnitUn, Price: 27.9},
	"feijão":  {Title: "Feijão carioca 1kg (preço de referência)", Quantity: 1, Unit: domain.UnitUn, Price: 8.9},
	"leite":   {Title: "Leite integral UHT 1L (preço de referência)", Quantity: 1, Unit: domain.UnitL, Price: 4.79},
	"café":    {Title: "Café torrado e moído 500g (preço de referência)", Quantity: 1, Unit: domain.UnitUn, Price: 18.9},
	"açúcar":  {Title: "Açúcar refinado 1kg (preço de referência)", Quantity: 1, Unit: domain.UnitUn, Price: 4.5},
	"pão":     {Title: "Pão francês (preço de referência)", Quantity: 1, Unit: domain.UnitKg, Price: 17.9},
	"banana":  {Title: "Banana prata (preço de referência)", Quantity: 1, Unit: domain.UnitKg, Price: 6.99},
	"tomate":  {Title: "Tomate (preço de referência)", Quantity: 1, Unit: domain.UnitKg, Price: 8.99},
	"picanha": {Title: "Picanha bovina (preço de referência)", Quantity: 1, Unit: domain.UnitKg, Price: 79.9},
	"frango":  {Title: "Frango inteiro congelado (preço de referência)", Quantity: 1, Unit: domain.UnitKg, Price: 14.9},
}

// ReferenceFallback produces synthetic placeholder offers for staple items.
// Offers carry IsFallback=true and no product URL; terms outside the
// reference table get nothing.
type ReferenceFallback struct{}

func NewReferenceFallback() *ReferenceFallback {
	return &ReferenceFallback{}
}

// Offers returns the synthetic offer for (source, term), or nil.
func (f *ReferenceFallback) Offers(source domain.Source, term string) []domain.Offer {
	reference, ok := referencePrices[term]
	if !ok {
		return nil
	}

	return []domain.Offer{{
		Source:           source,
		ItemName:         term,
		ProductTitle:     reference.Title,
		PackageQuantity:  reference.Quantity,
		PackageUnit:      reference.Unit,
		PackagePrice:     reference.Price,
		PricePerUserUnit: reference.Price / reference.Quantity,
		IsFallback:       true,
		CollectedAt:      time.Now().UTC(),
	}}
}
