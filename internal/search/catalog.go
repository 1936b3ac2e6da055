// Package search keeps an in-memory full-text index of the product catalog.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/realtime"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

const defaultLimit = 20

type document struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	InventoryCount float64 `json:"inventory_count"`
}

func toDocument(p models.Product) document {
	price, _ := p.Price.Float64()
	return document{
		Name:           p.Name,
		Description:    p.Description,
		Category:       strings.ToLower(p.Category),
		Price:          price,
		InventoryCount: float64(p.InventoryCount),
	}
}

// Params configures a catalog search.
type Params struct {
	Query       string
	Category    string
	InStockOnly bool
	Offset      int
	Limit       int
}

// Result lists matching product ids by descending score.
type Result struct {
	Total      uint64 `json:"total"`
	ProductIDs []int  `json:"product_ids"`
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	index    bleve.Index
	products repo.ProductRepository
	logger   *slog.Logger
}

func NewCatalog(products repo.ProductRepository, logger *slog.Logger) (*Catalog, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Catalog{index: index, products: products, logger: logger}, nil
}

func docID(productID int) string {
	return strconv.Itoa(productID)
}

func (c *Catalog) Index(p models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Index(docID(p.ID), toDocument(p))
}

func (c *Catalog) Remove(productID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Delete(docID(productID))
}

// Rebuild indexes every product in the repository.
func (c *Catalog) Rebuild(ctx context.Context) error {
	products, err := c.products.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	batch := c.index.NewBatch()
	for _, p := range products {
		if err := batch.Index(docID(p.ID), toDocument(p)); err != nil {
			return fmt.Errorf("index product %d: %w", p.ID, err)
		}
	}
	if err := c.index.Batch(batch); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	c.logger.Info("catalog index rebuilt", "products", len(products))
	return nil
}

// Watch keeps the index in step with product changes until the returned
// function is called.
func (c *Catalog) Watch(hub *realtime.Hub) func() {
	return hub.Subscribe(realtime.Filter{Tables: []string{realtime.TableProducts}}, func(ch realtime.Change) {
		if ch.ProductID == 0 {
			return
		}
		if err := c.sync(context.Background(), ch.ProductID); err != nil {
			c.logger.Warn("catalog sync failed", "product_id", ch.ProductID, "error", err)
		}
	})
}

func (c *Catalog) sync(ctx context.Context, productID int) error {
	p, err := c.products.GetByID(ctx, productID)
	if errors.Is(err, repo.ErrProductNotFound) {
		return c.Remove(productID)
	}
	if err != nil {
		return err
	}
	return c.Index(p)
}

func (c *Catalog) Search(ctx context.Context, params Params) (Result, error) {
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, max(params.Offset, 0), false)

	c.mu.RLock()
	res, err := c.index.SearchInContext(ctx, req)
	c.mu.RUnlock()
	if err != nil {
		return Result{}, fmt.Errorf("execute search: %w", err)
	}

	out := Result{Total: res.Total, ProductIDs: make([]int, 0, len(res.Hits))}
	for _, hit := range res.Hits {
		id, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		out.ProductIDs = append(out.ProductIDs, id)
	}
	return out, nil
}

func (c *Catalog) Close() error {
	return c.index.Close()
}

func buildQuery(params Params) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		descMatch := bleve.NewMatchQuery(q)
		descMatch.SetField("description")

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetField("name")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, descMatch, fuzzy}
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.Category != "" {
		tq := bleve.NewTermQuery(strings.ToLower(params.Category))
		tq.SetField("category")
		queries = append(queries, tq)
	}

	if params.InStockOnly {
		one := 1.0
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&one, nil, &inclusive, nil)
		rq.SetField("inventory_count")
		queries = append(queries, rq)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewConjunctionQuery(queries...)
}
