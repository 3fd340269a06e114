// Package metadata holds per-document score metadata and persists it as a
// JSON session keyed by document path.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ScoreMetadata describes one score document. DetectedParts carries the
// grouping result's names verbatim, in first-seen order.
type ScoreMetadata struct {
	Title         string   `json:"title"`
	Composer      string   `json:"composer"`
	Arranger      string   `json:"arranger"`
	Year          string   `json:"year"`
	Notes         string   `json:"notes"`
	DetectedParts []string `json:"detected_parts"`
}

// NewScoreMetadata returns metadata with an initialized empty parts slice so
// no two documents ever share a backing array.
func NewScoreMetadata() *ScoreMetadata {
	return &ScoreMetadata{DetectedParts: []string{}}
}

// Fields returns the string fields as a map for filename templating.
func (m *ScoreMetadata) Fields() map[string]string {
	return map[string]string{
		"title":    m.Title,
		"composer": m.Composer,
		"arranger": m.Arranger,
		"year":     m.Year,
	}
}

// Store manages metadata per document path with optional session
// persistence. Not safe for concurrent use.
type Store struct {
	sessionFile string
	metadata    map[string]*ScoreMetadata
}

// NewStore creates a Store. When sessionFile is non-empty and exists, the
// session is loaded; a missing file is not an error.
func NewStore(sessionFile string) (*Store, error) {
	s := &Store{
		sessionFile: sessionFile,
		metadata:    make(map[string]*ScoreMetadata),
	}
	if sessionFile != "" {
		if _, err := os.Stat(sessionFile); err == nil {
			if err := s.LoadSession(); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Get returns the metadata for a document path, creating an empty record on
// first access.
func (s *Store) Get(path string) *ScoreMetadata {
	m, ok := s.metadata[path]
	if !ok {
		m = NewScoreMetadata()
		s.metadata[path] = m
	}
	return m
}

// Update applies non-empty field values to a document's metadata. A nil
// parts slice leaves DetectedParts untouched.
func (s *Store) Update(path string, fields map[string]string, parts []string) {
	m := s.Get(path)
	for key, value := range fields {
		if value == "" {
			continue
		}
		switch key {
		case "title":
			m.Title = value
		case "composer":
			m.Composer = value
		case "arranger":
			m.Arranger = value
		case "year":
			m.Year = value
		case "notes":
			m.Notes = value
		default:
			log.Warn().Str("field", key).Msg("unknown metadata field ignored")
		}
	}
	if parts != nil {
		m.DetectedParts = append([]string{}, parts...)
	}
}

// SetSessionFile changes where SaveSession writes.
func (s *Store) SetSessionFile(path string) { s.sessionFile = path }

// SaveSession writes all metadata as a JSON object mapping document path to
// record. A Store without a session file saves nothing.
func (s *Store) SaveSession() error {
	if s.sessionFile == "" {
		return nil
	}
	if dir := filepath.Dir(s.sessionFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(s.metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.sessionFile, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	log.Debug().Str("file", s.sessionFile).Int("documents", len(s.metadata)).Msg("session saved")
	return nil
}

// LoadSession replaces in-memory metadata with the session file contents.
func (s *Store) LoadSession() error {
	data, err := os.ReadFile(s.sessionFile)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	loaded := make(map[string]*ScoreMetadata)
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse session: %w", err)
	}
	for _, m := range loaded {
		if m.DetectedParts == nil {
			m.DetectedParts = []string{}
		}
	}
	s.metadata = loaded
	return nil
}
