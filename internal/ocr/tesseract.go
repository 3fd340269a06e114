// Package ocr extracts per-page text from PDFs, preferring embedded text and
// falling back to Tesseract for scanned pages.
//
// Tesseract must be installed on the system (apt-get install tesseract-ocr).
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract wraps a gosseract client. Close must be called to release the
// native resources. Not safe for concurrent use; service-mode workers hold
// one client each.
type Tesseract struct {
	client *gosseract.Client
}

// NewTesseract creates an OCR client for the given language ("eng",
// "eng+deu", ...). An empty language keeps gosseract's default.
func NewTesseract(language string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set OCR language: %w", err)
		}
	}
	return &Tesseract{client: client}, nil
}

// Close releases Tesseract resources.
func (t *Tesseract) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// Recognize runs OCR over image bytes (PNG, JPEG, TIFF) and returns the
// recognized text, whitespace-trimmed.
func (t *Tesseract) Recognize(imageData []byte) (string, error) {
	if err := t.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("set OCR image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
