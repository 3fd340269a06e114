// Package grouping clusters analyzed pages into named part groups using
// fuzzy matching of detected part labels.
package grouping

import (
	"errors"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog/log"
)

// DefaultThreshold is the similarity ratio at or above which a page label
// joins an existing group.
const DefaultThreshold = 0.8

var (
	// ErrGroupNotFound is returned for operations on an unknown group name.
	ErrGroupNotFound = errors.New("group not found")
	// ErrPageMismatch is returned when a reorder request does not contain
	// exactly the pages currently in the group.
	ErrPageMismatch = errors.New("new order must contain exactly the same pages as the current group")
)

// PageRecord holds the analysis result for one page. Records are immutable
// once added to a Grouper.
type PageRecord struct {
	PageNumber int
	Title      string
	PartLabel  string
	RawText    string
}

// Groups is an ordered grouping result: part name to page numbers, with group
// names iterable in insertion order. Insertion order is load-bearing — the
// grouper's tie-break picks the first group over the threshold, and detected
// parts are reported in first-seen order.
type Groups struct {
	names []string
	pages map[string][]int
}

func newGroups() *Groups {
	return &Groups{pages: make(map[string][]int)}
}

// Names returns group names in insertion order.
func (g *Groups) Names() []string { return g.names }

// Pages returns the page numbers assigned to a group, in assignment order.
func (g *Groups) Pages(name string) ([]int, bool) {
	p, ok := g.pages[name]
	return p, ok
}

// Len returns the number of groups.
func (g *Groups) Len() int { return len(g.names) }

func (g *Groups) add(name string, page int) {
	if _, ok := g.pages[name]; !ok {
		g.names = append(g.names, name)
	}
	g.pages[name] = append(g.pages[name], page)
}

// Grouper accumulates page records and clusters them into part groups.
// Not safe for concurrent mutation; callers serialize access.
type Grouper struct {
	threshold float64
	pages     []PageRecord
	groups    *Groups
}

// New creates a Grouper. A threshold outside (0, 1] falls back to the default.
func New(threshold float64) *Grouper {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Grouper{threshold: threshold, groups: newGroups()}
}

// AddPage appends a record. Page number uniqueness is the caller's
// responsibility; pages must arrive in ascending page order since grouping
// is order-sensitive.
func (g *Grouper) AddPage(rec PageRecord) {
	g.pages = append(g.pages, rec)
}

// Pages returns all records added so far, in insertion order.
func (g *Grouper) Pages() []PageRecord { return g.pages }

// GroupPages recomputes the grouping from scratch over all added pages and
// replaces any previous result. Pages with an empty part label belong to no
// group. A page joins the first existing group whose name scores at or above
// the threshold; otherwise its label becomes a new group name verbatim.
func (g *Grouper) GroupPages() *Groups {
	groups := newGroups()
	for _, page := range g.pages {
		if page.PartLabel == "" {
			continue
		}
		name := g.findMatchingGroup(groups, page.PartLabel)
		if name == "" {
			name = page.PartLabel
			log.Debug().Str("group", name).Int("page", page.PageNumber).Msg("new part group")
		}
		groups.add(name, page.PageNumber)
	}
	g.groups = groups
	return groups
}

// GetGroupForPage returns the group owning a page number, if any, based on
// the most recent GroupPages result.
func (g *Grouper) GetGroupForPage(pageNumber int) (string, bool) {
	for _, name := range g.groups.names {
		for _, p := range g.groups.pages[name] {
			if p == pageNumber {
				return name, true
			}
		}
	}
	return "", false
}

// ReorderGroup replaces a group's page sequence with newOrder. newOrder must
// be a permutation of the group's current pages; otherwise the group is left
// untouched and ErrPageMismatch is returned.
func (g *Grouper) ReorderGroup(name string, newOrder []int) error {
	current, ok := g.groups.pages[name]
	if !ok {
		return ErrGroupNotFound
	}
	if !samePageSet(current, newOrder) {
		return ErrPageMismatch
	}
	g.groups.pages[name] = append([]int(nil), newOrder...)
	return nil
}

func (g *Grouper) findMatchingGroup(groups *Groups, label string) string {
	for _, name := range groups.names {
		if similarity(label, name) >= g.threshold {
			return name
		}
	}
	return ""
}

// similarity is a normalized edit-distance ratio over lowercased strings:
// 1 - lev(a,b)/max(len). Either string empty scores 0.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

func samePageSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int]int, len(a))
	for _, p := range a {
		seen[p]++
	}
	for _, p := range b {
		seen[p]--
		if seen[p] < 0 {
			return false
		}
	}
	return true
}
