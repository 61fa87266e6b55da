package service

import (
	"bytes"
	"fmt"
	"strings"

	"accidentsev/internal/catalog"
	"accidentsev/internal/form"
	"accidentsev/internal/model"
	"accidentsev/internal/schema"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RecapService builds the page-6 summary of a session
type RecapService struct {
	schema  *schema.Schema
	catalog *catalog.Catalog
	machine *form.Machine
	md      goldmark.Markdown
}

func NewRecapService(sch *schema.Schema, cat *catalog.Catalog, machine *form.Machine) *RecapService {
	return &RecapService{
		schema:  sch,
		catalog: cat,
		machine: machine,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Build lists the entered values page by page. A value without a catalog
// label is shown as is.
func (s *RecapService) Build(st *model.FormState) *model.Recap {
	recap := &model.Recap{
		Filled:  s.machine.FilledCount(st),
		Total:   s.schema.Len(),
		Missing: s.machine.MissingFields(st),
		Pages:   []model.RecapPage{},
	}
	if res, ok := s.machine.CachedResult(st); ok {
		recap.Result = res
	}

	for page := model.FirstPage; page < model.LastPage; page++ {
		rp := model.RecapPage{Page: page, Title: s.schema.PageTitle(page), Rows: []model.RecapRow{}}
		for _, f := range s.schema.ByPage(page) {
			v, ok := st.Inputs[f.Name]
			if !ok || v == nil {
				continue
			}
			code := model.ValueString(v)
			label, err := s.catalog.LabelFor(f.Name, v)
			if err != nil {
				label = code
			}
			rp.Rows = append(rp.Rows, model.RecapRow{Field: f.Name, Label: f.Label, Code: code, ValueLabel: label})
		}
		recap.Pages = append(recap.Pages, rp)
	}
	return recap
}

// Verdict is the sentence shown under a prediction
func Verdict(res model.PredictionResult) string {
	if res.Label == model.LabelGrave {
		return fmt.Sprintf("La probabilité (%s) est supérieure ou égale au seuil (%s). Ce contexte présente un risque élevé d'accident grave.",
			percent(res.Probability), percent(res.Threshold))
	}
	return fmt.Sprintf("La probabilité (%s) est inférieure au seuil (%s). Ce contexte présente un risque faible d'accident grave.",
		percent(res.Probability), percent(res.Threshold))
}

func percent(p float64) string {
	return fmt.Sprintf("%.2f %%", p*100)
}

// Markdown renders the recap as a markdown document
func (s *RecapService) Markdown(recap *model.Recap) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.schema.PageTitle(model.LastPage))
	fmt.Fprintf(&b, "Champs renseignés : %d/%d\n\n", recap.Filled, recap.Total)

	for _, page := range recap.Pages {
		if len(page.Rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## Page %d : %s\n\n", page.Page, page.Title)
		b.WriteString("| Champ | Code | Libellé |\n|---|---|---|\n")
		for _, row := range page.Rows {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(row.Label), cell(row.Code), cell(row.ValueLabel))
		}
		b.WriteString("\n")
	}

	if len(recap.Missing) > 0 {
		b.WriteString("## Champs manquants\n\n")
		for _, mf := range recap.Missing {
			fmt.Fprintf(&b, "- Page %d : %s\n", mf.Page, mf.Label)
		}
		b.WriteString("\n")
	}

	if recap.Result != nil {
		title := "ACCIDENT NON GRAVE"
		if recap.Result.Label == model.LabelGrave {
			title = "ACCIDENT GRAVE"
		}
		fmt.Fprintf(&b, "## Prédiction\n\n**%s**\n\n", title)
		fmt.Fprintf(&b, "Probabilité d'accident grave : %s (seuil : %s)\n\n", percent(recap.Result.Probability), percent(recap.Result.Threshold))
		b.WriteString(Verdict(recap.Result.PredictionResult))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML converts the recap markdown to an HTML fragment
func (s *RecapService) RenderHTML(recap *model.Recap) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(s.Markdown(recap)), &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return buf.String(), nil
}

// cell escapes characters that would break a table row
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, "\n", " ")
}
