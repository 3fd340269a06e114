package splitter

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/scoresplit/internal/analyze"
	"github.com/local/scoresplit/internal/grouping"
	"github.com/local/scoresplit/internal/metadata"
	"github.com/local/scoresplit/internal/naming"
)

type fakeSource struct {
	pages []string
}

func (f *fakeSource) PageCount(ctx context.Context) (int, error) {
	return len(f.pages), nil
}

func (f *fakeSource) PageText(ctx context.Context, pageNum int) (string, error) {
	if pageNum < 1 || pageNum > len(f.pages) {
		return "", fmt.Errorf("page %d out of range", pageNum)
	}
	return f.pages[pageNum-1], nil
}

type fakeWriter struct {
	writes map[string][]int
	fail   bool
}

func (f *fakeWriter) WritePages(ctx context.Context, outPath string, pages []int) error {
	if f.fail {
		return fmt.Errorf("disk full")
	}
	if f.writes == nil {
		f.writes = make(map[string][]int)
	}
	f.writes[outPath] = append([]int(nil), pages...)
	return nil
}

var vocabulary = []string{"Violin", "Viola", "Cello", "Flute"}

func newSplitter(t *testing.T, pages []string, writer *fakeWriter) *Splitter {
	t.Helper()
	meta, err := metadata.NewStore("")
	require.NoError(t, err)
	return New(Deps{
		DocPath:  "/scores/symphony.pdf",
		Source:   &fakeSource{pages: pages},
		Writer:   writer,
		Analyzer: analyze.New(vocabulary),
		Grouper:  grouping.New(grouping.DefaultThreshold),
		Namer:    naming.New(""),
		Metadata: meta,
	})
}

func TestAnalyzeAll(t *testing.T) {
	pages := []string{
		"Spring Waltz\nViolin I\n",
		"Violin I\npage 2\n",
		"no label on this page\n\n\n\n\n\n\n\n\n\n",
		"Violin 2\n",
		"Cello\n",
	}
	s := newSplitter(t, pages, &fakeWriter{})

	groups, err := s.AnalyzeAll(context.Background())
	require.NoError(t, err)

	// "Violin" matches pages 1, 2 and 4 ("Violin 2" contains the same
	// vocabulary entry); page 3 is unclassified; page 5 is Cello.
	require.Equal(t, []string{"Violin", "Cello"}, groups.Names())
	violin, _ := groups.Pages("Violin")
	cello, _ := groups.Pages("Cello")
	assert.Equal(t, []int{1, 2, 4}, violin)
	assert.Equal(t, []int{5}, cello)

	_, ok := s.Grouper().GetGroupForPage(3)
	assert.False(t, ok, "unlabeled page must stay unassigned")

	// Title from the first page feeds document metadata; detected parts
	// carry the group names verbatim.
	m := s.meta.Get("/scores/symphony.pdf")
	assert.Equal(t, "Spring Waltz", m.Title)
	assert.Equal(t, []string{"Violin", "Cello"}, m.DetectedParts)
}

func TestSplitWritesOneFilePerGroup(t *testing.T) {
	pages := []string{
		"Spring Waltz\nViolin I\n",
		"Violin I continued\n",
		"Flute\n",
	}
	writer := &fakeWriter{}
	s := newSplitter(t, pages, writer)

	outputs, err := s.Split(context.Background(), "out")
	require.NoError(t, err)

	require.Len(t, outputs, 2)
	assert.Equal(t, filepath.Join("out", "Spring Waltz_Violin.pdf"), outputs["Violin"])
	assert.Equal(t, filepath.Join("out", "Spring Waltz_Flute.pdf"), outputs["Flute"])
	assert.Equal(t, []int{1, 2}, writer.writes[outputs["Violin"]])
	assert.Equal(t, []int{3}, writer.writes[outputs["Flute"]])
}

func TestSplitHonorsReorderedGroups(t *testing.T) {
	pages := []string{"Violin\n", "Violin\n", "Violin\n"}
	writer := &fakeWriter{}
	s := newSplitter(t, pages, writer)

	_, err := s.AnalyzeAll(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Grouper().ReorderGroup("Violin", []int{2, 3, 1}))

	outputs, err := s.Split(context.Background(), "out")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, writer.writes[outputs["Violin"]])
}

func TestSplitWriterFailure(t *testing.T) {
	s := newSplitter(t, []string{"Violin\n"}, &fakeWriter{fail: true})

	_, err := s.Split(context.Background(), "out")
	assert.ErrorContains(t, err, "disk full")
}

func TestSplitNoDetectedParts(t *testing.T) {
	writer := &fakeWriter{}
	s := newSplitter(t, []string{"just a title page\n", "more prose\n"}, writer)

	outputs, err := s.Split(context.Background(), "out")
	require.NoError(t, err)
	assert.Empty(t, outputs)
	assert.Empty(t, writer.writes)
}
