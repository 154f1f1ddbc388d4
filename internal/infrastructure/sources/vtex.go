package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/precolista/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	defaultPageSize = 24
	defaultMaxPages = 3
)

// VTEXClient fetches product candidates from a VTEX-hosted storefront
// (Prezunic, Zona Sul, Extra all run VTEX). It tries the legacy catalog
// API first and falls back to the intelligent-search API.
type VTEXClient struct {
	source   domain.Source
	baseURL  string
	http     *resty.Client
	limiter  *rate.Limiter
	pageSize int
	maxPages int
	log      zerolog.Logger
}

// VTEXOption customizes a VTEXClient.
type VTEXOption func(*VTEXClient)

// WithVTEXPaging overrides the default page size and page count.
func WithVTEXPaging(pageSize, maxPages int) VTEXOption {
	return func(c *VTEXClient) {
		if pageSize > 0 && pageSize <= 50 {
			c.pageSize = pageSize
		}
		if maxPages > 0 && maxPages <= 6 {
			c.maxPages = maxPages
		}
	}
}

// NewVTEXClient creates a client for one VTEX storefront. Requests are
// rate limited to stay polite with the retailer.
func NewVTEXClient(source domain.Source, baseURL string, timeout time.Duration, logger zerolog.Logger, opts ...VTEXOption) *VTEXClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &VTEXClient{
		source:  source,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", defaultUserAgent).
			SetHeader("Accept", "application/json,text/plain,*/*"),
		limiter:  rate.NewLimiter(rate.Limit(2), 5),
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
		log:      logger.With().Str("component", "vtex_client").Str("source", string(source)).Logger(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Source returns the retailer this client serves.
func (c *VTEXClient) Source() domain.Source {
	return c.source
}

// vtexProduct is the loosely-typed product record VTEX search APIs return.
// Only the fields the offer builder needs are mapped.
type vtexProduct struct {
	ProductName string     `json:"productName"`
	Link        string     `json:"link"`
	LinkText    string     `json:"linkText"`
	Categories  []string   `json:"categories"`
	Items       []vtexItem `json:"items"`
	PriceRange  *struct {
		SellingPrice struct {
			LowPrice float64 `json:"lowPrice"`
		} `json:"sellingPrice"`
		ListPrice struct {
			HighPrice float64 `json:"highPrice"`
		} `json:"listPrice"`
	} `json:"priceRange"`
}

type vtexItem struct {
	UnitMultiplier  float64      `json:"unitMultiplier"`
	MeasurementUnit string       `json:"measurementUnit"`
	Sellers         []vtexSeller `json:"sellers"`
}

type vtexSeller struct {
	// VTEX historically misspells this field; some deployments fixed it.
	CommertialOffer *vtexOffer `json:"commertialOffer"`
	CommercialOffer *vtexOffer `json:"commercialOffer"`
}

type vtexOffer struct {
	Price     float64 `json:"Price"`
	ListPrice float64 `json:"ListPrice"`
}

// FetchCandidates searches the storefront for term and maps the results
// into raw candidates. Returns whatever the first working endpoint
// strategy yields.
func (c *VTEXClient) FetchCandidates(ctx context.Context, term string) ([]domain.RawCandidate, error) {
	encoded := url.QueryEscape(term)

	endpoints := []func(from, to int) string{
		func(from, to int) string {
			return fmt.Sprintf("%s/api/catalog_system/pub/products/search?ft=%s&_from=%d&_to=%d", c.baseURL, encoded, from, to)
		},
		func(from, to int) string {
			return fmt.Sprintf("%s/api/io/_v/api/intelligent-search/product_search?ft=%s&from=%d&to=%d", c.baseURL, encoded, from, to)
		},
	}

	seen := make(map[string]bool)
	var candidates []domain.RawCandidate
	var lastErr error

	for _, endpoint := range endpoints {
		for page := 0; page < c.maxPages; page++ {
			from := page * c.pageSize
			to := from + c.pageSize - 1

			products, err := c.fetchPage(ctx, endpoint(from, to))
			if err != nil {
				lastErr = err
				break
			}
			if len(products) == 0 {
				break
			}

			for _, product := range products {
				candidate, ok := c.mapProduct(product)
				if !ok {
					continue
				}
				dedupeKey := fmt.Sprintf("%s|%g", strings.ToLower(candidate.Title), candidate.Price)
				if seen[dedupeKey] {
					continue
				}
				seen[dedupeKey] = true
				candidates = append(candidates, candidate)
			}

			if len(products) < c.pageSize {
				break
			}
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, lastErr)
	}
	return candidates, nil
}

func (c *VTEXClient) fetchPage(ctx context.Context, endpoint string) ([]vtexProduct, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.http.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}

	return parseSearchPayload(resp.Body())
}

// parseSearchPayload accepts both payload shapes VTEX search endpoints
// use: a bare product array, or an object with a "products" field.
func parseSearchPayload(body []byte) ([]vtexProduct, error) {
	var products []vtexProduct
	if err := json.Unmarshal(body, &products); err == nil {
		return products, nil
	}

	var wrapped struct {
		Products []vtexProduct `json:"products"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected search payload: %w", err)
	}
	return wrapped.Products, nil
}

// mapProduct converts one VTEX product into a raw candidate. Products
// without a title or a positive price are dropped here; everything else is
// the offer builder's job.
func (c *VTEXClient) mapProduct(product vtexProduct) (domain.RawCandidate, bool) {
	title := strings.TrimSpace(product.ProductName)
	if title == "" {
		return domain.RawCandidate{}, false
	}

	price := product.sellingPrice()
	if price <= 0 {
		return domain.RawCandidate{}, false
	}

	candidate := domain.RawCandidate{
		Title:     title,
		Price:     price,
		ListPrice: product.listPrice(),
		URL:       c.absoluteURL(product.Link, product.LinkText),
	}

	if len(product.Items) > 0 {
		item := product.Items[0]
		if item.UnitMultiplier > 0 {
			candidate.UnitMultiplier = item.UnitMultiplier
		}
		candidate.MeasurementUnit = strings.ToLower(strings.TrimSpace(item.MeasurementUnit))
	}

	rawText, err := json.Marshal(map[string]interface{}{
		"productName":     product.ProductName,
		"categories":      product.Categories,
		"measurementUnit": candidate.MeasurementUnit,
		"unitMultiplier":  candidate.UnitMultiplier,
	})
	if err == nil {
		candidate.RawText = string(rawText)
	}

	return candidate, true
}

func (p vtexProduct) sellingPrice() float64 {
	if offer := p.firstOffer(); offer != nil && offer.Price > 0 {
		return offer.Price
	}
	if p.PriceRange != nil && p.PriceRange.SellingPrice.LowPrice > 0 {
		return p.PriceRange.SellingPrice.LowPrice
	}
	return 0
}

func (p vtexProduct) listPrice() float64 {
	if offer := p.firstOffer(); offer != nil && offer.ListPrice > 0 {
		return offer.ListPrice
	}
	if p.PriceRange != nil && p.PriceRange.ListPrice.HighPrice > 0 {
		return p.PriceRange.ListPrice.HighPrice
	}
	return 0
}

func (p vtexProduct) firstOffer() *vtexOffer {
	if len(p.Items) == 0 || len(p.Items[0].Sellers) == 0 {
		return nil
	}
	seller := p.Items[0].Sellers[0]
	if seller.CommertialOffer != nil {
		return seller.CommertialOffer
	}
	return seller.CommercialOffer
}

func (c *VTEXClient) absoluteURL(link, linkText string) string {
	href := strings.TrimSpace(link)
	if href == "" {
		href = strings.TrimSpace(linkText)
	}
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return c.baseURL + href
	}
	return c.baseURL + "/" + href
}
