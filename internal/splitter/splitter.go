// Package splitter runs the page-analysis pipeline over a PDF and writes one
// output file per detected instrument part.
package splitter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/local/scoresplit/internal/analyze"
	"github.com/local/scoresplit/internal/grouping"
	"github.com/local/scoresplit/internal/metadata"
	"github.com/local/scoresplit/internal/metrics"
	"github.com/local/scoresplit/internal/naming"
)

// PageSource supplies per-page text for one document.
type PageSource interface {
	PageCount(ctx context.Context) (int, error)
	PageText(ctx context.Context, pageNum int) (string, error)
}

// PageWriter writes a page selection of the source document to outPath.
type PageWriter interface {
	WritePages(ctx context.Context, outPath string, pages []int) error
}

// Splitter ties the analyzer, grouper and naming engine together for one
// document. Create one per document; mutation methods are not safe for
// concurrent use.
type Splitter struct {
	docPath  string
	source   PageSource
	writer   PageWriter
	analyzer *analyze.Analyzer
	grouper  *grouping.Grouper
	namer    *naming.Engine
	meta     *metadata.Store

	groups *grouping.Groups
}

// Deps collects the splitter's collaborators.
type Deps struct {
	DocPath  string
	Source   PageSource
	Writer   PageWriter
	Analyzer *analyze.Analyzer
	Grouper  *grouping.Grouper
	Namer    *naming.Engine
	Metadata *metadata.Store
}

// New creates a Splitter.
func New(deps Deps) *Splitter {
	return &Splitter{
		docPath:  deps.DocPath,
		source:   deps.Source,
		writer:   deps.Writer,
		analyzer: deps.Analyzer,
		grouper:  deps.Grouper,
		namer:    deps.Namer,
		meta:     deps.Metadata,
	}
}

// Grouper exposes the underlying grouper for reorder operations between
// analysis and splitting.
func (s *Splitter) Grouper() *grouping.Grouper { return s.grouper }

// AnalyzeAll extracts and classifies every page in ascending page order,
// groups them, and records the detected title and parts in the metadata
// store. Pages whose part cannot be determined stay unassigned.
func (s *Splitter) AnalyzeAll(ctx context.Context) (*grouping.Groups, error) {
	total, err := s.source.PageCount(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Str("doc", s.docPath).Int("pages", total).Msg("analyzing pages")

	for pageNum := 1; pageNum <= total; pageNum++ {
		text, err := s.source.PageText(ctx, pageNum)
		if err != nil {
			return nil, fmt.Errorf("page %d text: %w", pageNum, err)
		}
		title, part := s.analyzer.Analyze(text)
		s.grouper.AddPage(grouping.PageRecord{
			PageNumber: pageNum,
			Title:      title,
			PartLabel:  part,
			RawText:    text,
		})

		if part == "" {
			metrics.IncPageAnalyzed("unclassified")
		} else {
			metrics.IncPageAnalyzed("part")
		}
		// The document title comes from the first page only.
		if pageNum == 1 && title != "" {
			s.meta.Update(s.docPath, map[string]string{"title": title}, nil)
		}
		log.Debug().Int("page", pageNum).Str("title", title).Str("part", part).Msg("page analyzed")
	}

	s.groups = s.grouper.GroupPages()
	metrics.ObservePartsDetected(s.groups.Len())
	if s.groups.Len() > 0 {
		s.meta.Update(s.docPath, nil, s.groups.Names())
	}

	log.Info().Str("doc", s.docPath).Int("parts", s.groups.Len()).Msg("analysis complete")
	return s.groups, nil
}

// Split writes one PDF per detected group into outputDir and returns part
// name to output path. Analysis runs first if it has not happened yet.
func (s *Splitter) Split(ctx context.Context, outputDir string) (map[string]string, error) {
	if s.groups == nil {
		if _, err := s.AnalyzeAll(ctx); err != nil {
			return nil, err
		}
	}

	fields := s.meta.Get(s.docPath).Fields()
	outputs := make(map[string]string, s.groups.Len())

	for _, part := range s.groups.Names() {
		pages, _ := s.groups.Pages(part)
		outPath := s.namer.GenerateOutputPath(outputDir, fields, part)
		if err := s.writer.WritePages(ctx, outPath, pages); err != nil {
			metrics.IncPartFileWritten("error")
			return outputs, fmt.Errorf("split part %q: %w", part, err)
		}
		metrics.IncPartFileWritten("success")
		outputs[part] = outPath
		log.Info().Str("part", part).Str("out", outPath).Int("pages", len(pages)).Msg("part written")
	}
	return outputs, nil
}
