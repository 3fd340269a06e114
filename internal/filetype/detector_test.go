package filetype

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDetectPDF(t *testing.T) {
	// Minimal PDF header is enough for magic-byte detection.
	path := writeFile(t, "score.bin", []byte("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n"))

	info, err := Detect(path)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.MIMEType)
	assert.True(t, info.Supported)
}

func TestDetectRejectsText(t *testing.T) {
	path := writeFile(t, "notes.pdf", []byte("just some text pretending to be a pdf"))

	info, err := Detect(path)
	require.NoError(t, err)
	assert.False(t, info.Supported)
	assert.Contains(t, info.Description, "Unsupported")
}

func TestDetectMissingFile(t *testing.T) {
	_, err := Detect(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
