// Package naming turns filename templates and score metadata into
// filesystem-safe, unique output paths for split part files.
package naming

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTemplate is used when no template is configured.
const DefaultTemplate = "{title}_{part}"

const timestampLayout = "20060102_150405"

// Registry tracks every base filename an Engine has issued so repeated names
// get a monotonic numeric suffix. It is an explicit value so independent
// splitting runs can each use a fresh one.
type Registry struct {
	used map[string]int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{used: make(map[string]int)}
}

// claim returns base unchanged on first sight, and <stem>_<n><ext> with a
// per-name counter on every repeat. Counters never reset within a Registry.
func (r *Registry) claim(base string) string {
	if _, ok := r.used[base]; !ok {
		r.used[base] = 0
		return base
	}
	r.used[base]++
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "_" + strconv.Itoa(r.used[base]) + ext
}

// Engine renders filename templates for part files.
type Engine struct {
	template string
	registry *Registry
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry shares an existing registry between engines or runs.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithClock overrides the time source used for {timestamp}.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine. An empty template selects DefaultTemplate.
func New(template string, opts ...Option) *Engine {
	if template == "" {
		template = DefaultTemplate
	}
	e := &Engine{
		template: template,
		registry: NewRegistry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Template returns the active template string.
func (e *Engine) Template() string { return e.template }

// GenerateFilename renders the template with metadata plus the part name,
// sanitizes the result, ensures a .pdf extension and uniqueness. Placeholders
// with no matching key stay verbatim; the call never fails.
func (e *Engine) GenerateFilename(metadata map[string]string, part string) string {
	data := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		data[k] = v
	}
	data["part"] = part
	if strings.Contains(e.template, "{timestamp}") {
		data["timestamp"] = e.now().Format(timestampLayout)
	}

	name := e.template
	for key, value := range data {
		name = strings.ReplaceAll(name, "{"+key+"}", value)
	}

	name = Sanitize(name)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return e.registry.claim(name)
}

// GenerateOutputPath joins a generated filename onto the output directory.
func (e *Engine) GenerateOutputPath(outputDir string, metadata map[string]string, part string) string {
	return filepath.Join(outputDir, e.GenerateFilename(metadata, part))
}

// Sanitize makes a filename safe across operating systems: characters
// \ / * ? : " < > | become underscores, runs of underscores collapse to one,
// and leading/trailing underscores are trimmed.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|', '_':
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	return strings.Trim(b.String(), "_")
}
