package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

const (
	importModeSkip   = "skip"
	importModeUpdate = "update"
)

type csvRow struct {
	Name      string
	Category  string
	Price     decimal.Decimal
	Quantity  int
	Threshold int
	parseErr  error
}

var requiredColumns = []string{"name", "price", "quantity", "threshold"}

func parseCSV(r io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, errors.New("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}
		rows = append(rows, parseRow(record, index))
	}
	return rows, nil
}

func parseRow(record []string, index map[string]int) csvRow {
	row := csvRow{Name: strings.TrimSpace(record[index["name"]])}
	if i, ok := index["category"]; ok && i < len(record) {
		row.Category = strings.TrimSpace(record[i])
	}

	var err error
	if row.Price, err = decimal.NewFromString(record[index["price"]]); err != nil {
		row.parseErr = errors.New("invalid price")
		return row
	}
	if row.Quantity, err = strconv.Atoi(record[index["quantity"]]); err != nil {
		row.parseErr = errors.New("invalid quantity")
		return row
	}
	if row.Threshold, err = strconv.Atoi(record[index["threshold"]]); err != nil {
		row.parseErr = errors.New("invalid threshold")
	}
	return row
}

func validateRow(r csvRow) error {
	if r.parseErr != nil {
		return r.parseErr
	}
	if r.Name == "" {
		return errors.New("missing name")
	}
	if !r.Price.IsPositive() {
		return errors.New("invalid price")
	}
	if r.Quantity < 0 {
		return errors.New("invalid quantity")
	}
	if r.Threshold < 0 {
		return errors.New("invalid threshold")
	}
	return nil
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Columns: name, price, quantity, threshold and optional category. In update mode the inventory change is recorded as an import movement.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {object} ErrorResponse
// @Router /products/import [post]
// @Security BearerAuth
func (s *Server) ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != importModeUpdate {
		mode = importModeSkip
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := ImportProductsResult{Errors: []ValidationError{}}
	for i, rec := range records {
		rowNum := i + 2 // header is row 1
		if err := s.importRow(r.Context(), rec, mode); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:       "row " + strconv.Itoa(rowNum),
				Description: fmt.Sprintf("row %d: %v", rowNum, err),
			})
			continue
		}
		result.ImportedProductsCount++
	}

	s.logger.Info("products imported", "mode", mode, "imported", result.ImportedProductsCount, "rejected", len(result.Errors))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) importRow(ctx context.Context, rec csvRow, mode string) error {
	if err := validateRow(rec); err != nil {
		return err
	}

	existing, err := s.products.GetByName(ctx, rec.Name)
	switch {
	case errors.Is(err, repo.ErrProductNotFound):
		_, err := s.products.Create(ctx, models.Product{
			Name:           rec.Name,
			Category:       rec.Category,
			Price:          rec.Price,
			Rating:         models.DefaultRating,
			InventoryCount: rec.Quantity,
			Threshold:      rec.Threshold,
		})
		return err
	case err != nil:
		return err
	case mode == importModeSkip:
		return fmt.Errorf("product '%s' already exists", rec.Name)
	}

	existing.Price = rec.Price
	existing.Threshold = rec.Threshold
	if rec.Category != "" {
		existing.Category = rec.Category
	}
	if _, err := s.products.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to update '%s'", rec.Name)
	}
	if _, err := s.ledger.Adjust(ctx, existing.ID, rec.Quantity-existing.InventoryCount, models.ReasonImport); err != nil {
		return fmt.Errorf("failed to set inventory of '%s': %w", rec.Name, err)
	}
	return nil
}
