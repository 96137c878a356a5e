package viewmodels

import (
	"html/template"

	"github.com/guzmanc1/RikiWiki/internal/index"
	"github.com/guzmanc1/RikiWiki/internal/models"
)

// VersionRow combines one archived revision of a page with its display state.
type VersionRow struct {
	URL     string
	Title   string
	Version int
	Current bool
}

// PageData is a unified struct to hold all possible data for any page.
type PageData struct {
	SiteTitle   string
	Flashes     []string
	CurrentUser *models.User
	IsLoggedIn  bool
	Private     bool

	Page    *models.Page // The current page being viewed
	Pages   []*models.Page
	Content template.HTML

	// Set when the page being viewed is not the newest version.
	IsOldVersion bool
	CurrentURL   string

	// Editor, move and user forms.
	FormURL    string
	FormName   string
	FormTitle  string
	FormTags   string
	FormBody   string
	FormFormat string
	Formats    []string
	FormError  string

	// Version history and diffs.
	Versions []VersionRow
	DiffFrom string
	DiffTo   string

	// Tag browsing.
	Tags    []index.TagCount
	Tag     string
	Entries []index.Entry

	// Search.
	SearchTerm string
	IgnoreCase bool
	Searched   bool
	Results    []*models.Page

	// Login.
	Next string
}
