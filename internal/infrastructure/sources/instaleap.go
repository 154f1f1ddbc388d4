package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/precolista/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const instaleapSearchQuery = `
query SearchProducts($input: SearchProductsInput!) {
  searchProducts(searchProductsInput: $input) {
    products {
      sku
      name
      slug
      description
      price
      isAvailable
      brand
      unit
      stock
      ean
      categories {
        name
        path
      }
    }
  }
}`

// InstaleapClient fetches candidates from an Instaleap-hosted GraphQL
// storefront (Supermarket Delivery).
type InstaleapClient struct {
	source         domain.Source
	apiURL         string
	clientID       string
	storeReference string
	productBaseURL string
	http           *resty.Client
	limiter        *rate.Limiter
	pageSize       int
	maxPages       int
	log            zerolog.Logger
}

// InstaleapConfig carries the storefront identifiers.
type InstaleapConfig struct {
	APIURL         string
	ClientID       string
	StoreReference string
	ProductBaseURL string
	Timeout        time.Duration
}

func NewInstaleapClient(source domain.Source, cfg InstaleapConfig, logger zerolog.Logger) *InstaleapClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &InstaleapClient{
		source:         source,
		apiURL:         cfg.APIURL,
		clientID:       cfg.ClientID,
		storeReference: cfg.StoreReference,
		productBaseURL: strings.TrimRight(cfg.ProductBaseURL, "/"),
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", defaultUserAgent).
			SetHeader("Accept", "application/json").
			SetHeader("Content-Type", "application/json"),
		limiter:  rate.NewLimiter(rate.Limit(2), 5),
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
		log:      logger.With().Str("component", "instaleap_client").Str("source", string(source)).Logger(),
	}
}

func (c *InstaleapClient) Source() domain.Source {
	return c.source
}

type instaleapResponse struct {
	Data *struct {
		SearchProducts *struct {
			Products []instaleapProduct `json:"products"`
		} `json:"searchProducts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type instaleapProduct struct {
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	IsAvailable bool        `json:"isAvailable"`
	Brand       string      `json:"brand"`
	Unit        string      `json:"unit"`
	Stock       float64     `json:"stock"`
	EAN         interface{} `json:"ean"`
	Categories  []struct {
		Name string `json:"name"`
		Path string `json:"path"`
	} `json:"categories"`
}

// FetchCandidates pages through the GraphQL search until a short page or
// the page cap.
func (c *InstaleapClient) FetchCandidates(ctx context.Context, term string) ([]domain.RawCandidate, error) {
	var candidates []domain.RawCandidate

	for page := 1; page <= c.maxPages; page++ {
		products, err := c.fetchPage(ctx, term, page)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
			}
			break
		}
		if len(products) == 0 {
			break
		}

		for _, product := range products {
			if candidate, ok := c.mapProduct(product); ok {
				candidates = append(candidates, candidate)
			}
		}

		if len(products) < c.pageSize {
			break
		}
	}

	return candidates, nil
}

func (c *InstaleapClient) fetchPage(ctx context.Context, term string, page int) ([]instaleapProduct, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"query": instaleapSearchQuery,
		"variables": map[string]interface{}{
			"input": map[string]interface{}{
				"clientId":       c.clientID,
				"storeReference": c.storeReference,
				"pageSize":       c.pageSize,
				"currentPage":    page,
				"search":         []map[string]string{{"query": term}},
			},
		},
	}

	var parsed instaleapResponse
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&parsed).Post(c.apiURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}
	if len(parsed.Errors) > 0 {
		// GraphQL errors mean no usable page, not a transport failure.
		return nil, nil
	}
	if parsed.Data == nil || parsed.Data.SearchProducts == nil {
		return nil, nil
	}
	return parsed.Data.SearchProducts.Products, nil
}

func (c *InstaleapClient) mapProduct(product instaleapProduct) (domain.RawCandidate, bool) {
	title := strings.TrimSpace(product.Name)
	if title == "" || product.Price <= 0 {
		return domain.RawCandidate{}, false
	}

	categories := make([]string, 0, len(product.Categories))
	for _, category := range product.Categories {
		if category.Name != "" {
			categories = append(categories, category.Name)
		}
	}

	candidate := domain.RawCandidate{
		Title: title,
		Price: product.Price,
	}

	if slug := strings.TrimSpace(product.Slug); slug != "" && c.productBaseURL != "" {
		candidate.URL = c.productBaseURL + "/p/" + slug
	}

	rawText, err := json.Marshal(map[string]interface{}{
		"description": product.Description,
		"unit":        product.Unit,
		"stock":       product.Stock,
		"ean":         product.EAN,
		"categories":  categories,
	})
	if err == nil {
		candidate.RawText = string(rawText)
	}

	return candidate, true
}
