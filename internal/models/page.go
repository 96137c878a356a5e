package models

import "strings"

// Meta holds a page's header fields in the order they appear on disk.
// Keys are stored lowercased; writing a page emits them in insertion order.
type Meta struct {
	keys   []string
	values map[string]string
}

// NewMeta returns an empty metadata collection.
func NewMeta() *Meta {
	return &Meta{values: make(map[string]string)}
}

// Get returns the value for key and whether it was present.
func (m *Meta) Get(key string) (string, bool) {
	v, ok := m.values[strings.ToLower(key)]
	return v, ok
}

// Set stores a value, keeping the position of an already-present key.
func (m *Meta) Set(key, value string) {
	key = strings.ToLower(key)
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Keys returns the field names in insertion order.
func (m *Meta) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len reports the number of fields.
func (m *Meta) Len() int { return len(m.keys) }

// Page is a single wiki page backed by a file in the content directory.
type Page struct {
	URL  string // cleaned URL the page is addressed by
	Path string // path of the backing file
	Meta *Meta
	Body string // raw source without the header block
	HTML string // rendered body with wiki links resolved
}

// NewPage returns an empty page for the given location.
func NewPage(path, url string) *Page {
	return &Page{URL: url, Path: path, Meta: NewMeta()}
}

// Title returns the title header, falling back to the page URL.
func (p *Page) Title() string {
	if t, ok := p.Meta.Get("title"); ok && t != "" {
		return t
	}
	return p.URL
}

// SetTitle stores the title header.
func (p *Page) SetTitle(title string) { p.Meta.Set("title", title) }

// Tags returns the raw comma-separated tags header.
func (p *Page) Tags() string {
	t, _ := p.Meta.Get("tags")
	return t
}

// SetTags stores the tags header.
func (p *Page) SetTags(tags string) { p.Meta.Set("tags", tags) }

// TagList splits the tags header into trimmed, non-empty names.
func (p *Page) TagList() []string {
	var tags []string
	for _, t := range strings.Split(p.Tags(), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasTag reports whether the page carries the given tag.
func (p *Page) HasTag(name string) bool {
	for _, t := range p.TagList() {
		if t == name {
			return true
		}
	}
	return false
}
