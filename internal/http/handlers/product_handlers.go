package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/search"
)

func (s *Server) readProduct(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid input")
		return req, false
	}
	if errs := s.validator.Validate(req); errs != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: errs})
		return req, false
	}
	return req, true
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the catalog with its starting inventory
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Duplicated name"
// @Router /products [post]
func (s *Server) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readProduct(w, r)
	if !ok {
		return
	}

	rating := models.DefaultRating
	if req.Rating != nil {
		rating = *req.Rating
	}
	created, err := s.products.Create(r.Context(), models.Product{
		Name:           req.Name,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		Category:       req.Category,
		Price:          req.Price,
		Rating:         rating,
		InventoryCount: req.Quantity,
		Threshold:      req.Threshold,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			s.writeError(w, http.StatusConflict, "could not create product: product name duplicated")
			return
		}
		s.logger.Error("create product failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not create product")
		return
	}
	s.writeJSON(w, http.StatusCreated, toProductResponse(created))
}

// GetProductsHandler godoc
// @Summary List all products
// @Tags products
// @Produce json
// @Success 200 {array} ProductResponse
// @Failure 500 {object} ErrorResponse
// @Router /products [get]
func (s *Server) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.GetAll(r.Context())
	if err != nil {
		s.logger.Error("list products failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not fetch products")
		return
	}
	s.writeJSON(w, http.StatusOK, toProductResponses(products))
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [get]
func (s *Server) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		s.productError(w, err, "could not fetch product")
		return
	}
	s.writeJSON(w, http.StatusOK, toProductResponse(product))
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Description Replaces the display fields. Inventory is only changed through the adjust endpoint.
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [put]
// @Security BearerAuth
func (s *Server) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	req, ok := s.readProduct(w, r)
	if !ok {
		return
	}

	existing, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		s.productError(w, err, "could not update product")
		return
	}
	existing.Name = req.Name
	existing.Description = req.Description
	existing.ImageURL = req.ImageURL
	existing.Category = req.Category
	existing.Price = req.Price
	if req.Rating != nil {
		existing.Rating = *req.Rating
	}
	existing.Threshold = req.Threshold

	updated, err := s.products.Update(r.Context(), existing)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			s.writeError(w, http.StatusConflict, "product name duplicated")
			return
		}
		s.productError(w, err, "could not update product")
		return
	}
	s.writeJSON(w, http.StatusOK, toProductResponse(updated))
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [delete]
// @Security BearerAuth
func (s *Server) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		s.productError(w, err, "could not delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustQuantityHandler godoc
// @Summary Restock or correct a product's inventory
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param adjustment body QuantityAdjustmentRequest true "Quantity change"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Would go negative"
// @Router /products/{id}/adjust [post]
// @Security BearerAuth
func (s *Server) AdjustQuantityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req QuantityAdjustmentRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if errs := s.validator.Validate(req); errs != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: errs})
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = models.ReasonAdjustment
	}

	product, err := s.ledger.Adjust(r.Context(), id, req.Delta, reason)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidQuantityChange) {
			s.writeError(w, http.StatusConflict, "quantity cannot be negative")
			return
		}
		s.productError(w, err, "could not update quantity")
		return
	}
	s.writeJSON(w, http.StatusOK, toProductResponse(product))
}

// FilterProductsHandler godoc
// @Summary Filter and paginate products
// @Tags products
// @Produce json
// @Param name query string false "Filter by name"
// @Param category query string false "Filter by category"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param minQty query int false "Minimum inventory"
// @Param maxQty query int false "Maximum inventory"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ProductsSearchResult
// @Failure 400 {object} ErrorResponse
// @Router /products/search [get]
func (s *Server) FilterProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repo.ProductFilter{Name: q.Get("name"), Category: q.Get("category")}
	var err error
	if filter.MinPrice, err = parseDecimalPtr(q.Get("minPrice")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid minPrice")
		return
	}
	if filter.MaxPrice, err = parseDecimalPtr(q.Get("maxPrice")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid maxPrice")
		return
	}
	if filter.MinQty, err = parseIntPtr(q.Get("minQty")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid minQty")
		return
	}
	if filter.MaxQty, err = parseIntPtr(q.Get("maxQty")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid maxQty")
		return
	}
	if filter.Offset, filter.Limit, err = pagination(r); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, total, err := s.products.Filter(r.Context(), filter)
	if err != nil {
		s.logger.Error("filter products failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not filter products")
		return
	}
	s.writeJSON(w, http.StatusOK, ProductsSearchResult{Data: toProductResponses(products), Meta: Meta{TotalCount: total}})
}

// FindProductsHandler godoc
// @Summary Full-text product search
// @Description Matches name and description, tolerating small typos
// @Tags products
// @Produce json
// @Param q query string false "Search text"
// @Param category query string false "Exact category"
// @Param in_stock query bool false "Only products with inventory"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ProductsSearchResult
// @Failure 400 {object} ErrorResponse
// @Router /products/find [get]
func (s *Server) FindProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, limit, err := pagination(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inStock, _ := strconv.ParseBool(q.Get("in_stock"))

	params := search.Params{Query: q.Get("q"), Category: q.Get("category"), InStockOnly: inStock}
	if offset != nil {
		params.Offset = *offset
	}
	if limit != nil {
		params.Limit = *limit
	}

	res, err := s.catalog.Search(r.Context(), params)
	if err != nil {
		s.logger.Error("catalog search failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	products := make([]models.Product, 0, len(res.ProductIDs))
	for _, id := range res.ProductIDs {
		p, err := s.products.GetByID(r.Context(), id)
		if errors.Is(err, repo.ErrProductNotFound) {
			continue
		}
		if err != nil {
			s.logger.Error("load search hit failed", "product_id", id, "error", err)
			s.writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
		products = append(products, p)
	}
	s.writeJSON(w, http.StatusOK, ProductsSearchResult{Data: toProductResponses(products), Meta: Meta{TotalCount: int(res.Total)}})
}

func (s *Server) productError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, repo.ErrProductNotFound) {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	s.logger.Error(msg, "error", err)
	s.writeError(w, http.StatusInternalServerError, msg)
}
