package usecase

import (
	"testing"

	"github.com/precolista/backend/internal/domain"
)

func TestBuildOffers(t *testing.T) {
	t.Run("packaged good with size in title sells as one unit", func(t *testing.T) {
		offers := BuildOffers(domain.SourcePrezunic, "arroz", []domain.RawCandidate{
			{Title: "Arroz Branco Tipo 1 Camil 1kg", Price: 7.49, URL: "https://example.com/arroz/p"},
		})

		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		offer := offers[0]
		if offer.PackageUnit != domain.UnitUn || offer.PackageQuantity != 1 {
			t.Errorf("package = {%v %v}, want {1 un}", offer.PackageQuantity, offer.PackageUnit)
		}
		if offer.PackagePrice != 7.49 || offer.PricePerUserUnit != 7.49 {
			t.Errorf("prices = %v/%v, want 7.49/7.49", offer.PackagePrice, offer.PricePerUserUnit)
		}
		if offer.ItemName != "arroz" || offer.Source != domain.SourcePrezunic {
			t.Errorf("identity = %q/%q", offer.ItemName, offer.Source)
		}
		if offer.IsFallback {
			t.Error("builder output must never be marked fallback")
		}
	})

	t.Run("irrelevant candidates are dropped", func(t *testing.T) {
		offers := BuildOffers(domain.SourceZonaSul, "arroz", []domain.RawCandidate{
			{Title: "Feijão Preto 1kg", Price: 8.9},
			{Title: "Arroz Integral 1kg", Price: 9.9},
		})
		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		if offers[0].ProductTitle != "Arroz Integral 1kg" {
			t.Errorf("kept %q, want the arroz candidate", offers[0].ProductTitle)
		}
	})

	t.Run("malformed candidates are dropped", func(t *testing.T) {
		offers := BuildOffers(domain.SourceExtra, "arroz", []domain.RawCandidate{
			{Title: "", Price: 10},
			{Title: "Arroz Branco 1kg", Price: 0},
			{Title: "Arroz Branco 1kg", Price: -3},
		})
		if len(offers) != 0 {
			t.Errorf("len(offers) = %d, want 0", len(offers))
		}
	})

	t.Run("weight sold item without size is priced per kg", func(t *testing.T) {
		offers := BuildOffers(domain.SourcePrezunic, "picanha", []domain.RawCandidate{
			{Title: "Picanha Bovina Resfriada", Price: 79.9},
		})
		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		offer := offers[0]
		if offer.PackageUnit != domain.UnitKg || offer.PackageQuantity != 1 {
			t.Errorf("package = {%v %v}, want {1 kg}", offer.PackageQuantity, offer.PackageUnit)
		}
		if offer.PricePerUserUnit != 79.9 {
			t.Errorf("PricePerUserUnit = %v, want 79.9", offer.PricePerUserUnit)
		}
	})

	t.Run("weight sold gram packages convert to kg", func(t *testing.T) {
		offers := BuildOffers(domain.SourceZonaSul, "picanha", []domain.RawCandidate{
			{Title: "Picanha Bovina 300g", Price: 24.9},
		})
		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		offer := offers[0]
		if offer.PackageUnit != domain.UnitKg || offer.PackageQuantity != 0.3 {
			t.Errorf("package = {%v %v}, want {0.3 kg}", offer.PackageQuantity, offer.PackageUnit)
		}
		want := 24.9 / 0.3
		if diff := offer.PricePerUserUnit - want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("PricePerUserUnit = %v, want %v", offer.PricePerUserUnit, want)
		}
	})

	t.Run("catalog measurement data overrides title parsing", func(t *testing.T) {
		offers := BuildOffers(domain.SourceExtra, "arroz", []domain.RawCandidate{
			{Title: "Arroz Parboilizado Pacote", Price: 22.5, UnitMultiplier: 5, MeasurementUnit: "kg", RawText: `{"measurementUnit":"kg"} 4,50/kg`},
		})
		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		offer := offers[0]
		if offer.PackageUnit != domain.UnitKg || offer.PackageQuantity != 1 {
			t.Errorf("package = {%v %v}, want {1 kg} from the card per-measure price", offer.PackageQuantity, offer.PackageUnit)
		}
		if offer.PackagePrice != 4.5 {
			t.Errorf("PackagePrice = %v, want 4.5 from the card marker", offer.PackagePrice)
		}
	})

	t.Run("catalog un never replaces a measured unit", func(t *testing.T) {
		offers := BuildOffers(domain.SourcePrezunic, "picanha", []domain.RawCandidate{
			{Title: "Picanha Bovina 500g", Price: 39.9, UnitMultiplier: 1, MeasurementUnit: "un"},
		})
		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		if offers[0].PackageUnit != domain.UnitKg {
			t.Errorf("PackageUnit = %v, want kg kept over catalog un", offers[0].PackageUnit)
		}
	})

	t.Run("card per kg price overrides package for weight sold items", func(t *testing.T) {
		offers := BuildOffers(domain.SourceZonaSul, "picanha", []domain.RawCandidate{
			{Title: "Picanha Bovina Peça 1,2kg", Price: 95.88, RawText: "Picanha Bovina Peça 79,90/kg"},
		})
		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		offer := offers[0]
		if offer.PackageUnit != domain.UnitKg || offer.PackageQuantity != 1 {
			t.Errorf("package = {%v %v}, want {1 kg}", offer.PackageQuantity, offer.PackageUnit)
		}
		if offer.PackagePrice != 79.9 {
			t.Errorf("PackagePrice = %v, want 79.90", offer.PackagePrice)
		}
	})

	t.Run("implausibly low per kg butcher prices are scaled from 100g", func(t *testing.T) {
		offers := BuildOffers(domain.SourceExtra, "picanha", []domain.RawCandidate{
			{Title: "Picanha Bovina Resfriada", Price: 4.5},
		})
		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		if offers[0].PackagePrice != 45.0 {
			t.Errorf("PackagePrice = %v, want 45.0 (per 100g scaled to kg)", offers[0].PackagePrice)
		}
	})

	t.Run("plausible per kg butcher prices stay untouched", func(t *testing.T) {
		offers := BuildOffers(domain.SourceExtra, "frango", []domain.RawCandidate{
			{Title: "Frango Inteiro Congelado", Price: 15.9},
		})
		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		if offers[0].PackagePrice != 15.9 {
			t.Errorf("PackagePrice = %v, want 15.9", offers[0].PackagePrice)
		}
	})

	t.Run("term is normalized before matching", func(t *testing.T) {
		offers := BuildOffers(domain.SourcePrezunic, "Pão Francês", []domain.RawCandidate{
			{Title: "Pão Francês kg", Price: 17.9},
		})
		if len(offers) != 1 {
			t.Fatalf("len(offers) = %d, want 1", len(offers))
		}
		if offers[0].ItemName != "pão" {
			t.Errorf("ItemName = %q, want %q", offers[0].ItemName, "pão")
		}
	})
}

func TestExtractCardUnitPrice(t *testing.T) {
	testCases := []struct {
		name      string
		rawText   string
		wantPrice float64
		wantUnit  domain.Unit
		wantNil   bool
	}{
		{
			name:      "per kg with comma",
			rawText:   "Picanha 79,90/kg",
			wantPrice: 79.9,
			wantUnit:  domain.UnitKg,
		},
		{
			name:      "per kg with spaces around slash",
			rawText:   "Alcatra 54,90 / kg resfriada",
			wantPrice: 54.9,
			wantUnit:  domain.UnitKg,
		},
		{
			name:      "per liter",
			rawText:   "Leite 4,59/l caixa",
			wantPrice: 4.59,
			wantUnit:  domain.UnitL,
		},
		{
			name:    "plain price without measure marker",
			rawText: "Arroz 7,49 pacote",
			wantNil: true,
		},
		{
			name:    "empty text",
			rawText: "",
			wantNil: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractCardUnitPrice(tc.rawText)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("extractCardUnitPrice(%q) = %+v, want nil", tc.rawText, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("extractCardUnitPrice(%q) = nil, want a match", tc.rawText)
			}
			if got.Price != tc.wantPrice || got.Unit != tc.wantUnit {
				t.Errorf("extractCardUnitPrice(%q) = {%v %v}, want {%v %v}",
					tc.rawText, got.Price, got.Unit, tc.wantPrice, tc.wantUnit)
			}
		})
	}
}
