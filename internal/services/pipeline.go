package services

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/exporters"
	"github.com/mrlokans/kindle-notebook/internal/metadata"
	"github.com/mrlokans/kindle-notebook/internal/render"
)

// Pipeline turns a fetched notebook into files: enrich, render, export.
type Pipeline struct {
	enricher BookEnricher
	renderer *render.Renderer
}

// NewPipeline creates a pipeline. A nil enricher skips metadata lookups.
func NewPipeline(enricher BookEnricher, renderer *render.Renderer) *Pipeline {
	return &Pipeline{enricher: enricher, renderer: renderer}
}

// ProcessResult summarizes the downstream steps of a run.
type ProcessResult struct {
	Enrichment     metadata.EnrichmentResult `json:"enrichment"`
	Notes          []render.Note             `json:"-"`
	RenderFailures []render.RenderFailure    `json:"render_failures,omitempty"`
	Export         exporters.ExportResult    `json:"export"`
}

// Process mutates result.Books with metadata, then renders and exports every book.
func (p *Pipeline) Process(ctx context.Context, result *entities.NotebookResult, exporter exporters.NoteExporter) (*ProcessResult, error) {
	out := &ProcessResult{}

	if p.enricher != nil && len(result.Books) > 0 {
		enrichment, err := p.enricher.EnrichBooks(ctx, result.Books)
		if err != nil {
			return out, fmt.Errorf("enrich books: %w", err)
		}
		out.Enrichment = enrichment
		log.Printf("[NOTEBOOK] metadata: %d enriched, %d not found", enrichment.Enriched, enrichment.Failed)
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}

	out.Notes, out.RenderFailures = p.renderer.RenderAll(*result)

	exportResult, err := exporter.Export(out.Notes)
	if err != nil {
		return out, fmt.Errorf("export notes: %w", err)
	}
	out.Export = exportResult
	return out, nil
}
