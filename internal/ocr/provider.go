package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"

	"github.com/local/scoresplit/internal/config"
	"github.com/local/scoresplit/internal/imagerender"
	"github.com/local/scoresplit/internal/metrics"
)

// Recognizer is the OCR engine the provider falls back to. *Tesseract
// implements it.
type Recognizer interface {
	Recognize(imageData []byte) (string, error)
}

// Provider supplies per-page text for one PDF document. Engraved PDFs carry
// an embedded text layer read via go-fitz; scanned PDFs yield next to no
// embedded text, so pages under MinTextChars are rasterized and OCRed.
type Provider struct {
	path       string
	cfg        config.OCRConfig
	recognizer Recognizer
}

// NewProvider creates a Provider for a local PDF. recognizer may be nil when
// OCR fallback is not wanted; forced OCR then fails.
func NewProvider(path string, cfg config.OCRConfig, recognizer Recognizer) *Provider {
	return &Provider{path: path, cfg: cfg, recognizer: recognizer}
}

// PageCount returns the document's page count.
func (p *Provider) PageCount(ctx context.Context) (int, error) {
	doc, err := fitz.New(p.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// PageText returns the raw text of a 1-based page. Embedded text wins unless
// it is shorter than the configured minimum or OCR is forced.
func (p *Provider) PageText(ctx context.Context, pageNum int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var embedded string
	if !p.cfg.Force {
		text, err := p.embeddedText(pageNum)
		if err != nil {
			return "", err
		}
		if len(text) >= p.cfg.MinTextChars {
			metrics.IncPageTextSource("embedded")
			return text, nil
		}
		embedded = text
	}

	if p.recognizer == nil {
		if p.cfg.Force {
			return "", fmt.Errorf("OCR forced but no OCR engine configured")
		}
		log.Debug().Int("page", pageNum).Msg("no OCR engine, keeping sparse embedded text")
		metrics.IncPageTextSource("embedded")
		return embedded, nil
	}

	start := time.Now()
	img, _, _, err := imagerender.RenderPageToPNG(p.path, pageNum, p.cfg.DPI, imagerender.ColorGray)
	if err != nil {
		return "", err
	}
	text, err := p.recognizer.Recognize(img)
	if err != nil {
		return "", fmt.Errorf("OCR page %d: %w", pageNum, err)
	}
	metrics.IncPageTextSource("ocr")
	metrics.ObserveOCR(time.Since(start))

	log.Debug().
		Int("page", pageNum).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("page recognized via OCR")

	return text, nil
}

func (p *Provider) embeddedText(pageNum int) (string, error) {
	doc, err := fitz.New(p.path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	// go-fitz uses 0-based indexing
	idx := pageNum - 1
	if idx < 0 || idx >= doc.NumPage() {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", pageNum, doc.NumPage())
	}
	text, err := doc.Text(idx)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
	}
	return text, nil
}
