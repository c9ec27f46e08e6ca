package synonyms

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"carebaby/taxonomy"

	"gopkg.in/yaml.v3"
)

var ErrMalformedSource = errors.New("malformed synonym source")

// Entry is a normalized phrase mapped to a canonical tag slug.
type Entry struct {
	Phrase string `json:"phrase"`
	Slug   string `json:"slug"`
}

// Dictionary is an immutable phrase -> slug lookup. Build it once at startup
// and share it by reference; it is safe for concurrent use.
type Dictionary struct {
	bySlug  map[string][]string
	byKey   map[string]string
	entries []Entry
}

// New builds a dictionary from a raw phrase -> slug mapping. Keys are
// normalized; a key that normalizes to "" or two keys that collide on
// different slugs make the source malformed.
func New(raw map[string]string) (*Dictionary, error) {
	d := &Dictionary{
		byKey:  make(map[string]string, len(raw)),
		bySlug: make(map[string][]string),
	}

	for phrase, slug := range raw {
		key := Normalize(phrase)
		slug = strings.TrimSpace(slug)
		if key == "" {
			return nil, fmt.Errorf("%w: empty phrase for slug %q", ErrMalformedSource, slug)
		}
		if slug == "" {
			return nil, fmt.Errorf("%w: empty slug for phrase %q", ErrMalformedSource, phrase)
		}
		if existing, ok := d.byKey[key]; ok {
			if existing != slug {
				return nil, fmt.Errorf("%w: phrase %q maps to both %q and %q", ErrMalformedSource, key, existing, slug)
			}
			continue
		}
		d.byKey[key] = slug
	}

	d.entries = make([]Entry, 0, len(d.byKey))
	for key, slug := range d.byKey {
		d.entries = append(d.entries, Entry{Phrase: key, Slug: slug})
	}
	sort.Slice(d.entries, func(i, j int) bool {
		return d.entries[i].Phrase < d.entries[j].Phrase
	})
	for _, e := range d.entries {
		d.bySlug[e.Slug] = append(d.bySlug[e.Slug], e.Phrase)
	}

	return d, nil
}

// Parse decodes a JSON or YAML phrase -> slug document.
func Parse(data []byte, format string) (*Dictionary, error) {
	raw := make(map[string]string)

	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
	case "json", "":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrMalformedSource, format)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrMalformedSource)
	}

	return New(raw)
}

// Load reads a synonym document from disk. The format follows the file
// extension (.json, .yaml, .yml).
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading synonyms %s: %w", path, err)
	}

	d, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("parsing synonyms %s: %w", path, err)
	}
	return d, nil
}

// Canonicalize returns the slug whose phrase exactly matches Normalize(text).
func (d *Dictionary) Canonicalize(text string) (string, bool) {
	slug, ok := d.byKey[Normalize(text)]
	return slug, ok
}

// Entries returns every (phrase, slug) pair sorted by phrase. Callers must
// not modify the returned slice.
func (d *Dictionary) Entries() []Entry {
	return d.entries
}

// PhrasesFor returns all normalized phrases that map to slug.
func (d *Dictionary) PhrasesFor(slug string) []string {
	return d.bySlug[slug]
}

func (d *Dictionary) Len() int {
	return len(d.entries)
}

// LoadOrDefault loads the synonym document at path, or the embedded taxonomy when path is empty.
func LoadOrDefault(path string) (*Dictionary, error) {
	if path == "" {
		d, err := Parse(taxonomy.Synonyms, "json")
		if err != nil {
			return nil, fmt.Errorf("parsing embedded synonyms: %w", err)
		}
		return d, nil
	}
	return Load(path)
}
