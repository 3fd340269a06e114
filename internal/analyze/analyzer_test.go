package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testVocabulary = []string{"Violin", "Viola", "Cello", "Flute", "Horn", "Full Score"}

func TestDetectTitle(t *testing.T) {
	a := New(testVocabulary)

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "first line is title",
			text: "Symphony No. 5\nViolin I\n",
			want: "Symphony No. 5",
		},
		{
			name: "instrument line skipped",
			text: "Violin I\nSymphony No. 5\n",
			want: "Symphony No. 5",
		},
		{
			name: "blank lines skipped",
			text: "\n\n  \nOverture\n",
			want: "Overture",
		},
		{
			name: "case insensitive vocabulary match",
			text: "VIOLA part book\nSerenade\n",
			want: "Serenade",
		},
		{
			name: "no title in first five lines",
			text: "Violin\nViola\nCello\nFlute\nHorn\nActual Title\n",
			want: "",
		},
		{
			name: "empty text",
			text: "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.DetectTitle(tt.text))
		})
	}
}

func TestDetectPartName(t *testing.T) {
	a := New(testVocabulary)

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "exact line",
			text: "Violin\n",
			want: "Violin",
		},
		{
			name: "substring of a longer line",
			text: "Concerto\n2nd Flute in C\n",
			want: "Flute",
		},
		{
			name: "case insensitive",
			text: "CELLO\n",
			want: "Cello",
		},
		{
			name: "vocabulary order breaks ties within a line",
			text: "Viola Violin doubling\n",
			want: "Violin",
		},
		{
			name: "line order wins over vocabulary order",
			text: "Horn in F\nViolin I\n",
			want: "Horn",
		},
		{
			name: "nothing in first ten lines",
			text: "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\nViolin\n",
			want: "",
		},
		{
			name: "no match",
			text: "Some Song\nAllegro moderato\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.DetectPartName(tt.text))
		})
	}
}

// The part detector only ever returns vocabulary members verbatim, never
// free-form text from the page.
func TestDetectPartNameReturnsVocabularyEntry(t *testing.T) {
	a := New(testVocabulary)
	inputs := []string{
		"violin solo with rubato",
		"FULL SCORE (conductor)",
		"nothing musical here",
		"viola\nviolin",
	}
	members := make(map[string]bool, len(testVocabulary))
	for _, v := range testVocabulary {
		members[v] = true
	}
	for _, text := range inputs {
		got := a.DetectPartName(text)
		if got != "" {
			assert.True(t, members[got], "detector returned %q which is not a vocabulary entry", got)
		}
	}
}

func TestAnalyze(t *testing.T) {
	a := New(testVocabulary)
	title, part := a.Analyze("The Planets\nHorn 1\n")
	assert.Equal(t, "The Planets", title)
	assert.Equal(t, "Horn", part)
}
