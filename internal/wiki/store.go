// Package wiki is the file-backed page store. Pages live as Markdown or
// Org files under a single content directory; saving never overwrites,
// it writes the next _vN version of the file instead.
package wiki

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/guzmanc1/RikiWiki/internal/markup"
	"github.com/guzmanc1/RikiWiki/internal/models"
)

var (
	// ErrNotFound means no file backs the requested URL.
	ErrNotFound = errors.New("page not found")
	// ErrExists means the target URL is already taken.
	ErrExists = errors.New("page already exists")
	// ErrInvalidPath means the URL resolves outside the content directory.
	ErrInvalidPath = errors.New("path outside content directory")
)

var multiSpace = regexp.MustCompile(` {2,}`)

// CleanURL normalizes a user-entered URL: multiple and surrounding
// spaces are dropped, the rest is lowercased with spaces as underscores,
// and Windows-style separators become slashes.
func CleanURL(url string) string {
	url = strings.TrimSpace(multiSpace.ReplaceAllString(url, " "))
	url = strings.ToLower(url)
	url = strings.ReplaceAll(url, " ", "_")
	url = strings.ReplaceAll(url, `\`, "/")
	return strings.Trim(url, "/")
}

// Store reads and writes wiki pages below a root directory.
type Store struct {
	root     string
	renderer *markup.Renderer

	mu sync.Mutex // serializes writes
}

// NewStore opens the content directory, creating it when missing.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	s := &Store{root: abs}
	s.renderer = markup.NewRenderer(func(target string) string {
		return "/" + CleanURL(target) + "/"
	})
	return s, nil
}

// Root returns the absolute content directory.
func (s *Store) Root() string { return s.root }

// resolve maps a cleaned URL to an extensionless absolute path, refusing
// anything that would land outside the content directory.
func (s *Store) resolve(url string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(url))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, url)
	}
	return path, nil
}

// findFile locates the file backing a URL, trying each known extension.
func (s *Store) findFile(url string) (string, bool) {
	stem, err := s.resolve(url)
	if err != nil {
		return "", false
	}
	for _, ext := range markup.Extensions {
		path := stem + ext
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Exists reports whether a file backs the URL.
func (s *Store) Exists(url string) bool {
	_, ok := s.findFile(url)
	return ok
}

// Get loads and renders the page at url. Returns ErrNotFound when no
// file backs it.
func (s *Store) Get(url string) (*models.Page, error) {
	path, ok := s.findFile(url)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	page := models.NewPage(path, url)
	if err := s.load(page); err != nil {
		return nil, err
	}
	return page, nil
}

// NewPage returns an empty page for a URL that has no file yet. The
// backing file appears on the first Save.
func (s *Store) NewPage(url string, format markup.Format) (*models.Page, error) {
	stem, err := s.resolve(url)
	if err != nil {
		return nil, err
	}
	return models.NewPage(stem+markup.ExtensionFor(format), url), nil
}

// Save writes the page as the next version of its file and reloads it,
// so URL, path and HTML reflect what is now on disk. The previous
// version is left untouched.
func (s *Store) Save(page *models.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := basePath(page.Path)
	highest := 0
	if siblings, err := versionedSiblings(base); err != nil {
		return err
	} else if len(siblings) > 0 {
		highest = VersionOfPath(siblings[len(siblings)-1])
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	page.Path = fmt.Sprintf("%s_v%d%s", stem, highest+1, ext)

	if err := os.MkdirAll(filepath.Dir(page.Path), 0o755); err != nil {
		return fmt.Errorf("create page dir: %w", err)
	}
	data := markup.Serialize(page.Meta, page.Body)
	if err := os.WriteFile(page.Path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write page %s: %w", page.Path, err)
	}
	page.URL = s.urlForPath(page.Path)
	return s.load(page)
}

// Move renames the file backing url to newURL's first version and drops
// the remaining old versions. Returns the URL the page now lives at.
func (s *Store) Move(url, newURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.findFile(url)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	newURL = CleanURL(newURL)
	if newURL == "" {
		return "", fmt.Errorf("%w: empty target", ErrInvalidPath)
	}
	if s.AnyVersionExists(newURL) {
		return "", fmt.Errorf("%w: %s", ErrExists, newURL)
	}
	stem, err := s.resolve(newURL + "_v1")
	if err != nil {
		return "", err
	}
	target := stem + filepath.Ext(source)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create page dir: %w", err)
	}
	if err := os.Rename(source, target); err != nil {
		return "", fmt.Errorf("move page: %w", err)
	}
	if err := s.removeVersionsOf(source); err != nil {
		return "", err
	}
	return newURL + "_v1", nil
}

// Delete removes the file backing url together with every other version
// of it.
func (s *Store) Delete(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.findFile(url)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete page %s: %w", path, err)
	}
	return s.removeVersionsOf(path)
}

// removeVersionsOf drops all remaining versions sharing path's base,
// including the unversioned file.
func (s *Store) removeVersionsOf(path string) error {
	siblings, err := versionedSiblings(path)
	if err != nil {
		return err
	}
	base := basePath(path)
	if _, err := os.Stat(base); err == nil {
		siblings = append(siblings, base)
	}
	for _, p := range siblings {
		if p == path {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete page %s: %w", p, err)
		}
	}
	return nil
}

// AnyVersionExists reports whether any file, versioned or not, already
// backs the URL.
func (s *Store) AnyVersionExists(url string) bool {
	stem, err := s.resolve(url)
	if err != nil {
		return false
	}
	for _, ext := range markup.Extensions {
		if _, err := os.Stat(stem + ext); err == nil {
			return true
		}
		if siblings, _ := versionedSiblings(stem + ext); len(siblings) > 0 {
			return true
		}
	}
	return false
}

// Index loads every page version under the content directory, sorted by
// title. Files the wiki cannot render are skipped.
func (s *Store) Index() ([]*models.Page, error) {
	var pages []*models.Page
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := markup.FormatForPath(path); !ok {
			return nil
		}
		page := models.NewPage(path, s.urlForPath(path))
		if err := s.load(page); err != nil {
			return err
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index content dir: %w", err)
	}
	SortByTitle(pages)
	return pages, nil
}

// Search matches term as a regular expression against title, tags and
// body of every current page. A term that does not compile is searched
// literally.
func (s *Store) Search(term string, ignoreCase bool) ([]*models.Page, error) {
	prefix := ""
	if ignoreCase {
		prefix = "(?i)"
	}
	re, err := regexp.Compile(prefix + term)
	if err != nil {
		re = regexp.MustCompile(prefix + regexp.QuoteMeta(term))
	}

	pages, err := s.Index()
	if err != nil {
		return nil, err
	}
	var matched []*models.Page
	for _, page := range pages {
		if re.MatchString(page.Title()) || re.MatchString(page.Tags()) || re.MatchString(page.Body) {
			matched = append(matched, page)
		}
	}
	return FilterOldVersions(matched), nil
}

// Preview renders body without touching the store.
func (s *Store) Preview(body string, format markup.Format) (string, error) {
	return s.renderer.Render(body, format)
}

// SortByTitle orders pages by title, case insensitively.
func SortByTitle(pages []*models.Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		ti, tj := strings.ToLower(pages[i].Title()), strings.ToLower(pages[j].Title())
		if ti != tj {
			return ti < tj
		}
		return pages[i].URL < pages[j].URL
	})
}

func (s *Store) urlForPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return CleanURL(filepath.ToSlash(rel))
}

func (s *Store) load(page *models.Page) error {
	raw, err := os.ReadFile(page.Path)
	if err != nil {
		return fmt.Errorf("read page %s: %w", page.Path, err)
	}
	format, ok := markup.FormatForPath(page.Path)
	if !ok {
		format = markup.Markdown
	}
	html, body, meta, err := s.renderer.Process(string(raw), format)
	if err != nil {
		return fmt.Errorf("render page %s: %w", page.Path, err)
	}
	page.HTML = html
	page.Body = body
	page.Meta = meta
	return nil
}
