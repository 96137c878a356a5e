package wiki

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guzmanc1/RikiWiki/internal/models"
)

const (
	pageContent1 = "title: Test\ntags: one, two, 3\n\nHello, how are you guys?\n\n**Is it not _magnificent_**?\n"
	pageContent2 = "title: Test\ntags: a, b, c, d\n\nTest test test\n"
	pageContent3 = "title: Not_Test\ntags: z\n\nWoo!\n"
	pageContent4 = "title: title\ntags: fdfd\n\nStuff!\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// versionFixture lays out name_v1, test_v1, test_v2 and file_v1 so that
// test_v1 is the only page with a newer sibling.
func versionFixture(t *testing.T) (name1, test1, test2, file1 *models.Page) {
	t.Helper()
	dir := t.TempDir()
	name1 = models.NewPage(writeFile(t, dir, "name_v1.md", pageContent1), "name_v1")
	test1 = models.NewPage(writeFile(t, dir, "test_v1.md", pageContent2), "test_v1")
	test2 = models.NewPage(writeFile(t, dir, "test_v2.md", pageContent3), "test_v2")
	file1 = models.NewPage(writeFile(t, dir, "file_v1.md", pageContent4), "file_v1")
	return
}

func TestSplitVersion(t *testing.T) {
	cases := []struct {
		name    string
		base    string
		version int
	}{
		{"name_v1", "name", 1},
		{"test_v2", "test", 2},
		{"notes_v12", "notes", 12},
		{"plain", "plain", 0},
		{"odd_v1_v2", "odd_v1", 2},
		{"v2", "v2", 0},
	}
	for _, c := range cases {
		base, version := SplitVersion(c.name)
		assert.Equal(t, c.base, base, c.name)
		assert.Equal(t, c.version, version, c.name)
	}
}

func TestHighestVersionPath(t *testing.T) {
	name1, test1, test2, file1 := versionFixture(t)

	assert.Equal(t, name1.Path, HighestVersionPath(name1.Path))
	assert.Equal(t, test2.Path, HighestVersionPath(test1.Path))
	assert.Equal(t, test2.Path, HighestVersionPath(test2.Path))
	assert.Equal(t, file1.Path, HighestVersionPath(file1.Path))
}

func TestHighestVersionPathUnversionedFile(t *testing.T) {
	dir := t.TempDir()
	home := writeFile(t, dir, "home.md", pageContent1)

	assert.Equal(t, home, HighestVersionPath(home))

	home2 := writeFile(t, dir, "home_v2.md", pageContent2)
	assert.Equal(t, home2, HighestVersionPath(home))
}

func TestFilterOldVersions(t *testing.T) {
	name1, test1, test2, file1 := versionFixture(t)
	filtered := FilterOldVersions([]*models.Page{name1, test1, test2, file1})

	assert.Contains(t, filtered, name1)
	assert.NotContains(t, filtered, test1)
	assert.Contains(t, filtered, test2)
	assert.Contains(t, filtered, file1)
}

func TestVersions(t *testing.T) {
	name1, test1, test2, file1 := versionFixture(t)
	all := []*models.Page{name1, test1, test2, file1}

	versions1 := Versions(name1, all)
	assert.Equal(t, []*models.Page{name1}, versions1)

	versions2 := Versions(test1, all)
	assert.Equal(t, []*models.Page{test1, test2}, versions2)

	versions3 := Versions(test2, all)
	assert.Equal(t, []*models.Page{test1, test2}, versions3)

	versions4 := Versions(file1, all)
	assert.Equal(t, []*models.Page{file1}, versions4)
}

func TestHighestPage(t *testing.T) {
	name1, test1, test2, file1 := versionFixture(t)
	all := []*models.Page{name1, test1, test2, file1}

	assert.Equal(t, test2, HighestPage(all, "test"))
	assert.Equal(t, name1, HighestPage(all, "name"))
	assert.Nil(t, HighestPage(all, "missing"))
}

func TestHighestPageIgnoresUnversionedFile(t *testing.T) {
	dir := t.TempDir()
	home := models.NewPage(writeFile(t, dir, "home.md", pageContent1), "home")

	assert.Nil(t, HighestPage([]*models.Page{home}, "home"))
}

func TestVersionOfPath(t *testing.T) {
	assert.Equal(t, 1, VersionOfPath("/content/name_v1.md"))
	assert.Equal(t, 12, VersionOfPath("/content/name_v12.org"))
	assert.Equal(t, 0, VersionOfPath("/content/home.md"))
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "docs/notes", BaseURL("docs/notes_v2"))
	assert.Equal(t, "home", BaseURL("home_v1"))
	assert.Equal(t, "home", BaseURL("home"))
}
