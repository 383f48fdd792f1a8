// Package handler: export.go implements GET /export.
// Returns every note, published or not, as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/notes/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"note_id", "title", "slug", "is_published", "category",
	"author", "created_at", "updated_at", "tags",
}

// ExportRow is the JSON shape of one exported note.
type ExportRow struct {
	NoteID      int64     `json:"note_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	IsPublished bool      `json:"is_published"`
	Category    string    `json:"category"`
	Author      *string   `json:"author,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tags        []string  `json:"tags"`
}

// GetExport handles GET /export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorBody("bad_request", "invalid format parameter"))
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		s.writeJSON(w, r, http.StatusBadRequest, errorBody("bad_request", "format must be csv or json"))
		return
	}

	rows, err := s.svc.Export.Export(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if format != nil && *format == "csv" {
		body := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="notes.csv"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	out := make([]ExportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domainRowToJSON(row))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

// buildCSV encodes domain rows as CSV.
// Tags within a row are pipe-separated ("|") to keep each note on a single CSV line.
func buildCSV(rows []domain.ExportRow) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		w.Write(domainRowToCSVRecord(row))
	}
	w.Flush()
	return buf.Bytes()
}

// domainRowToJSON maps a domain.ExportRow to its JSON shape.
// An empty author becomes a nil pointer (omitted in JSON).
func domainRowToJSON(r domain.ExportRow) ExportRow {
	row := ExportRow{
		NoteID:      r.NoteID,
		Title:       r.Title,
		Slug:        r.Slug,
		IsPublished: r.IsPublished,
		Category:    r.CategorySlug,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Tags:        r.Tags,
	}
	if row.Tags == nil {
		row.Tags = []string{}
	}
	if r.Author != "" {
		row.Author = &r.Author
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Tags are joined with "|".
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		strconv.FormatInt(r.NoteID, 10),
		r.Title,
		r.Slug,
		strconv.FormatBool(r.IsPublished),
		r.CategorySlug,
		r.Author,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
		strings.Join(r.Tags, "|"),
	}
}
