package naming

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFilename(t *testing.T) {
	meta := map[string]string{
		"title":    "Symphony No. 5",
		"composer": "Beethoven",
	}

	t.Run("default template", func(t *testing.T) {
		e := New("")
		got := e.GenerateFilename(meta, "Violin I")
		assert.Equal(t, "Symphony No. 5_Violin I.pdf", got)
	})

	t.Run("custom template", func(t *testing.T) {
		e := New("{composer}-{title}-{part}")
		got := e.GenerateFilename(meta, "Cello")
		assert.Equal(t, "Beethoven-Symphony No. 5-Cello.pdf", got)
	})

	t.Run("unknown placeholder left verbatim", func(t *testing.T) {
		e := New("{title}_{movement}")
		got := e.GenerateFilename(meta, "Viola")
		assert.Equal(t, "Symphony No. 5_{movement}.pdf", got)
	})

	t.Run("missing metadata keys collapse", func(t *testing.T) {
		e := New("{title}_{arranger}_{part}")
		got := e.GenerateFilename(map[string]string{"title": "Waltz"}, "Flute")
		// {arranger} stays verbatim because no key was supplied.
		assert.Equal(t, "Waltz_{arranger}_Flute.pdf", got)
	})
}

func TestGenerateFilenameTimestamp(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
	clock := func() time.Time { return fixed }

	t.Run("rendered when placeholder present", func(t *testing.T) {
		e := New("{part}_{timestamp}", WithClock(clock))
		got := e.GenerateFilename(nil, "Tuba")
		assert.Equal(t, "Tuba_20240309_143005.pdf", got)
	})

	t.Run("absent placeholder ignored", func(t *testing.T) {
		e := New("{part}", WithClock(clock))
		got := e.GenerateFilename(nil, "Tuba")
		assert.Equal(t, "Tuba.pdf", got)
	})
}

func TestGenerateFilenameUniqueness(t *testing.T) {
	e := New("")
	meta := map[string]string{"title": "X"}

	first := e.GenerateFilename(meta, "Oboe")
	second := e.GenerateFilename(meta, "Oboe")
	third := e.GenerateFilename(meta, "Oboe")

	assert.Equal(t, "X_Oboe.pdf", first)
	assert.Equal(t, "X_Oboe_1.pdf", second)
	assert.Equal(t, "X_Oboe_2.pdf", third)
}

// A template with no placeholders produces the same base name every call,
// exercising the collision counter for every file after the first.
func TestGenerateFilenameConstantTemplate(t *testing.T) {
	e := New("part")
	assert.Equal(t, "part.pdf", e.GenerateFilename(nil, "Violin"))
	assert.Equal(t, "part_1.pdf", e.GenerateFilename(nil, "Viola"))
	assert.Equal(t, "part_2.pdf", e.GenerateFilename(nil, "Cello"))
}

func TestGenerateFilenameSanitization(t *testing.T) {
	e := New("")
	got := e.GenerateFilename(map[string]string{"title": "My/Song:Title"}, "Violin*1")

	assert.Equal(t, "My_Song_Title_Violin_1.pdf", got)
	for _, c := range `\/*?:"<>|` {
		assert.NotContains(t, got, string(c))
	}
	assert.NotContains(t, got, "__")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a\b/c*d?e:f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j"},
		{"___leading and trailing___", "leading and trailing"},
		{"runs////collapse", "runs_collapse"},
		{"clean name", "clean name"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in))
	}
}

func TestPDFExtension(t *testing.T) {
	e := New("{title}")

	t.Run("appended when missing", func(t *testing.T) {
		got := e.GenerateFilename(map[string]string{"title": "March"}, "")
		assert.True(t, strings.HasSuffix(got, ".pdf"))
	})

	t.Run("not doubled when present case-insensitively", func(t *testing.T) {
		got := e.GenerateFilename(map[string]string{"title": "March.PDF"}, "")
		assert.Equal(t, "March.PDF", got)
	})
}

func TestSharedRegistry(t *testing.T) {
	reg := NewRegistry()
	e1 := New("", WithRegistry(reg))
	e2 := New("", WithRegistry(reg))
	meta := map[string]string{"title": "Suite"}

	assert.Equal(t, "Suite_Harp.pdf", e1.GenerateFilename(meta, "Harp"))
	// A second engine over the same registry keeps counting.
	assert.Equal(t, "Suite_Harp_1.pdf", e2.GenerateFilename(meta, "Harp"))
}

func TestGenerateOutputPath(t *testing.T) {
	e := New("")
	got := e.GenerateOutputPath("out", map[string]string{"title": "Suite"}, "Harp")
	require.Equal(t, filepath.Join("out", "Suite_Harp.pdf"), got)
}
