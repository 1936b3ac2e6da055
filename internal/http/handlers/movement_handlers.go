package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

func (s *Server) movementFilter(r *http.Request) (repo.MovementFilter, string) {
	var mf repo.MovementFilter
	var err error
	if mf.Since, err = parseTimestamp(r.URL.Query().Get("since")); err != nil {
		return mf, "invalid since date format"
	}
	if mf.Until, err = parseTimestamp(r.URL.Query().Get("until")); err != nil {
		return mf, "invalid until date format"
	}
	return mf, ""
}

// GetMovementsHandler godoc
// @Summary Get product movement logs
// @Tags movements
// @Produce json
// @Param id path int true "Product ID"
// @Param since query string false "Filter movements from this timestamp (RFC3339)"
// @Param until query string false "Filter movements until this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} MovementsSearchResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/{id}/movements [get]
// @Security BearerAuth
func (s *Server) GetMovementsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	if _, err := s.products.GetByID(r.Context(), id); err != nil {
		s.productError(w, err, "could not retrieve movements")
		return
	}

	mf, msg := s.movementFilter(r)
	if msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}
	if mf.Offset, mf.Limit, err = pagination(r); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	movements, total, err := s.movements.GetByProductID(r.Context(), id, mf)
	if err != nil {
		s.logger.Error("could not retrieve movements", "product_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not retrieve movements")
		return
	}
	s.writeJSON(w, http.StatusOK, MovementsSearchResult{Data: movements, Meta: Meta{TotalCount: total}})
}

// ExportMovementsHandler godoc
// @Summary Export product movement logs
// @Tags movements
// @Produce text/csv,application/json
// @Param id path int true "Product ID"
// @Param format query string true "Export format (csv or json)"
// @Param since query string false "Filter from timestamp (RFC3339)"
// @Param until query string false "Filter until timestamp (RFC3339)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /products/{id}/movements/export [get]
// @Security BearerAuth
func (s *Server) ExportMovementsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		s.writeError(w, http.StatusBadRequest, "format must be 'csv' or 'json'")
		return
	}

	mf, msg := s.movementFilter(r)
	if msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}
	mf.Unbounded = true

	movements, _, err := s.movements.GetByProductID(r.Context(), id, mf)
	if err != nil {
		s.logger.Error("could not export movements", "product_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not retrieve movements")
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="movements.json"`)
		if err := json.NewEncoder(w).Encode(movements); err != nil {
			s.logger.Debug("failed to write export", "error", err)
		}

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="movements.csv"`)

		csvWriter := csv.NewWriter(w)
		_ = csvWriter.Write([]string{"id", "product_id", "delta", "reason", "created_at"})
		for _, m := range movements {
			_ = csvWriter.Write([]string{
				strconv.Itoa(m.ID),
				strconv.Itoa(m.ProductID),
				strconv.Itoa(m.Delta),
				m.Reason,
				m.CreatedAt.Format(time.RFC3339),
			})
		}
		csvWriter.Flush()
	}
}
