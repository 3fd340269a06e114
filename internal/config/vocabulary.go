package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const vocabularyFile = "instrument_parts.json"

// DefaultVocabulary lists the instrument part names recognized out of the
// box. Order matters: the analyzer returns the first entry matching a line,
// so more specific or more common names come first.
func DefaultVocabulary() []string {
	return []string{
		"Violin", "Viola", "Cello", "Bass", "Flute", "Oboe", "Clarinet",
		"Bassoon", "Horn", "Trumpet", "Trombone", "Tuba", "Timpani",
		"Percussion", "Harp", "Piano", "Conductor", "Score", "Full Score",
	}
}

// LoadVocabulary reads the instrument vocabulary from configDir, seeding the
// file with the default list on first run. A corrupt file logs a warning and
// falls back to the defaults rather than failing the run.
func LoadVocabulary(configDir string) ([]string, error) {
	path := filepath.Join(configDir, vocabularyFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		defaults := DefaultVocabulary()
		if err := SaveVocabulary(configDir, defaults); err != nil {
			return nil, err
		}
		log.Debug().Str("file", path).Msg("seeded default instrument vocabulary")
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("invalid vocabulary file, using defaults")
		return DefaultVocabulary(), nil
	}
	return parts, nil
}

// SaveVocabulary writes the instrument vocabulary to configDir, creating the
// directory if needed.
func SaveVocabulary(configDir string, parts []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(parts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal vocabulary: %w", err)
	}
	path := filepath.Join(configDir, vocabularyFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}
	return nil
}

// AddVocabularyEntry appends a part name if not already present and persists
// the list. Returns the updated vocabulary.
func AddVocabularyEntry(configDir, part string) ([]string, error) {
	parts, err := LoadVocabulary(configDir)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		if p == part {
			return parts, nil
		}
	}
	parts = append(parts, part)
	if err := SaveVocabulary(configDir, parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// RemoveVocabularyEntry deletes a part name if present and persists the list.
// Returns the updated vocabulary.
func RemoveVocabularyEntry(configDir, part string) ([]string, error) {
	parts, err := LoadVocabulary(configDir)
	if err != nil {
		return nil, err
	}
	out := parts[:0]
	removed := false
	for _, p := range parts {
		if p == part {
			removed = true
			continue
		}
		out = append(out, p)
	}
	if !removed {
		return parts, nil
	}
	if err := SaveVocabulary(configDir, out); err != nil {
		return nil, err
	}
	return out, nil
}
