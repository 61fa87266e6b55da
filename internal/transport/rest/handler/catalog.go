package handler

import (
	"net/http"

	"accidentsev/internal/catalog"
	"accidentsev/internal/model"
	"accidentsev/internal/schema"

	"github.com/gorilla/mux"
)

// CatalogHandler exposes the field schema and reference options to form clients
type CatalogHandler struct {
	schema  *schema.Schema
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(sch *schema.Schema, cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{schema: sch, catalog: cat}
}

// SchemaField is one entry of GET /v1/schema
type SchemaField struct {
	Name   string            `json:"name"`
	Label  string            `json:"label"`
	Page   int               `json:"page"`
	Domain schema.DomainKind `json:"domain"`
}

// SchemaPage groups fields by form page
type SchemaPage struct {
	Page   int           `json:"page"`
	Title  string        `json:"title"`
	Fields []SchemaField `json:"fields"`
}

// Schema handles GET /v1/schema
func (h *CatalogHandler) Schema(w http.ResponseWriter, r *http.Request) {
	pages := make([]SchemaPage, 0, model.LastPage)
	for page := model.FirstPage; page <= model.LastPage; page++ {
		p := SchemaPage{Page: page, Title: h.schema.PageTitle(page), Fields: []SchemaField{}}
		for _, f := range h.schema.ByPage(page) {
			p.Fields = append(p.Fields, SchemaField{
				Name:   f.Name,
				Label:  f.Label,
				Page:   f.Page,
				Domain: f.Domain.Kind(),
			})
		}
		pages = append(pages, p)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"features": h.schema.Names(),
		"pages":    pages,
	})
}

// Field handles GET /v1/catalog/{field}
func (h *CatalogHandler) Field(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["field"]
	def, ok := h.schema.Lookup(field)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown field")
		return
	}

	opts, err := h.catalog.Options(field)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	formatted, err := h.catalog.FormattedOptions(field)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := model.FieldOptions{
		Field:     field,
		Label:     def.Label,
		Page:      def.Page,
		Options:   opts,
		Formatted: formatted,
	}
	if help, ok := h.catalog.Help(field); ok {
		resp.Help = help
	}
	writeJSON(w, http.StatusOK, resp)
}
