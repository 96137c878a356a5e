package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates
var templateFiles embed.FS

// pageTemplates lists every template that renders inside layout.html.
var pageTemplates = []string{
	"home.html",
	"page.html",
	"index.html",
	"editor.html",
	"create.html",
	"move.html",
	"versions.html",
	"diff.html",
	"tags.html",
	"tag.html",
	"search.html",
	"login.html",
	"create_user.html",
	"404.html",
}

// NewTemplates parses one template set per page, each sharing the layout.
func NewTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)
	for _, page := range pageTemplates {
		tmpl, err := template.ParseFS(templateFiles, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("error parsing template %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}
