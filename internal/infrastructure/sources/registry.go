package sources

import (
	"time"

	"github.com/precolista/backend/internal/domain"
	"github.com/rs/zerolog"
)

// RetailerConfig carries the per-source connection settings the registry
// needs to build clients.
type RetailerConfig struct {
	PrezunicBaseURL string
	ZonaSulBaseURL  string
	ExtraBaseURL    string
	Instaleap       InstaleapConfig
	Timeout         time.Duration
	PageSize        int
	MaxPages        int
}

// NewClients builds every retailer client in fan-out order.
func NewClients(cfg RetailerConfig, logger zerolog.Logger) []domain.SourceClient {
	paging := WithVTEXPaging(cfg.PageSize, cfg.MaxPages)

	return []domain.SourceClient{
		NewVTEXClient(domain.SourcePrezunic, cfg.PrezunicBaseURL, cfg.Timeout, logger, paging),
		NewVTEXClient(domain.SourceZonaSul, cfg.ZonaSulBaseURL, cfg.Timeout, logger, paging),
		NewVTEXClient(domain.SourceExtra, cfg.ExtraBaseURL, cfg.Timeout, logger, paging),
		NewInstaleapClient(domain.SourceSupermarketDelivery, cfg.Instaleap, logger),
	}
}

// Categories lists each retailer's top-level store sections, used by the
// categories endpoint.
var Categories = map[domain.Source][]string{
	domain.SourcePrezunic: {
		"Hortifruti",
		"Açougue e Peixaria",
		"Padaria",
		"Laticínios e Frios",
		"Mercearia",
		"Bebidas",
		"Congelados",
		"Limpeza",
		"Higiene e Beleza",
		"Bebê e Infantil",
		"Pet Shop",
	},
	domain.SourceZonaSul: {
		"Hortifruti",
		"Carnes, Aves e Peixes",
		"Frios e Laticínios",
		"Padaria",
		"Mercearia e Gastronomia",
		"Bebidas e Adega",
		"Congelados",
		"Limpeza da Casa",
		"Higiene e Beleza",
		"Bebês e Crianças",
		"Pet Shop",
		"Utilidades Domésticas",
	},
	domain.SourceExtra: {
		"Açougue e Peixaria",
		"Frios e Laticínios",
		"Padaria",
		"Hortifruti",
		"Mercearia",
		"Bebidas",
		"Congelados",
		"Limpeza",
		"Higiene e Beleza",
		"Bebê",
		"Pet Shop",
		"Utilidades Domésticas",
	},
	domain.SourceSupermarketDelivery: {
		"Hortifruti",
		"Carnes e Peixes",
		"Mercearia",
		"Laticínios e Frios",
		"Padaria e Biscoitos",
		"Bebidas",
		"Congelados",
		"Limpeza",
		"Higiene e Beleza",
		"Bebê",
		"Pet Shop",
		"Utilidades e Bazar",
	},
}
