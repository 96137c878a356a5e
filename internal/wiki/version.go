package wiki

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/guzmanc1/RikiWiki/internal/models"
)

var versionSuffix = regexp.MustCompile(`_v(\d+)$`)

// SplitVersion splits an extensionless name like "notes_v2" into its base
// "notes" and version 2. Names without a suffix report version 0.
func SplitVersion(name string) (base string, version int) {
	m := versionSuffix.FindStringSubmatch(name)
	if m == nil {
		return name, 0
	}
	version, _ = strconv.Atoi(m[1])
	return strings.TrimSuffix(name, m[0]), version
}

// VersionOfPath returns the version encoded in a file path, 0 when the
// file name carries no suffix.
func VersionOfPath(path string) int {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	_, version := SplitVersion(name)
	return version
}

// BaseURL strips the version suffix from the last segment of a page URL:
// "docs/notes_v2" becomes "docs/notes".
func BaseURL(url string) string {
	dir, name := path.Split(url)
	base, _ := SplitVersion(name)
	return dir + base
}

// basePath strips the version suffix but keeps directory and extension:
// "a/notes_v2.md" becomes "a/notes.md".
func basePath(path string) string {
	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)
	base, _ := SplitVersion(name)
	return filepath.Join(filepath.Dir(path), base+ext)
}

// versionedSiblings lists the on-disk files that are versions of path,
// i.e. share its directory, base name and extension. The unversioned
// file itself is not included.
func versionedSiblings(path string) ([]string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)
	base, _ := SplitVersion(name)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var out []string
	prefix := base + "_v"
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		middle := strings.TrimSuffix(strings.TrimPrefix(e.Name(), prefix), ext)
		if middle == "" || strings.IndexFunc(middle, notDigit) >= 0 {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Slice(out, func(i, j int) bool {
		return VersionOfPath(out[i]) < VersionOfPath(out[j])
	})
	return out, nil
}

func notDigit(r rune) bool { return r < '0' || r > '9' }

// HighestVersionPath returns the newest version of the file at path, or
// path itself when no versioned sibling exists.
func HighestVersionPath(path string) string {
	siblings, err := versionedSiblings(path)
	if err != nil || len(siblings) == 0 {
		return path
	}
	return siblings[len(siblings)-1]
}

// FilterOldVersions keeps only pages that are the newest version of their
// file. Unversioned files without versioned siblings survive the filter.
func FilterOldVersions(pages []*models.Page) []*models.Page {
	var out []*models.Page
	for _, page := range pages {
		if HighestVersionPath(page.Path) == page.Path {
			out = append(out, page)
		}
	}
	return out
}

// Versions picks out of all the pages that are versions of page, oldest
// first.
func Versions(page *models.Page, all []*models.Page) []*models.Page {
	want := make(map[string]bool)
	siblings, err := versionedSiblings(page.Path)
	if err != nil {
		return nil
	}
	for _, s := range siblings {
		want[s] = true
	}
	var out []*models.Page
	for _, p := range all {
		if want[p.Path] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return VersionOfPath(out[i].Path) < VersionOfPath(out[j].Path)
	})
	return out
}

// HighestPage returns the newest versioned page whose base name matches
// name, or nil when no versioned file for that name exists.
func HighestPage(pages []*models.Page, name string) *models.Page {
	var current *models.Page
	version := 0
	for _, page := range pages {
		fname := strings.TrimSuffix(filepath.Base(page.Path), filepath.Ext(page.Path))
		base, v := SplitVersion(fname)
		if base != name || v == 0 {
			continue
		}
		if v > version {
			current = page
			version = v
		}
	}
	return current
}
