package markup

import (
	"fmt"
	"regexp"
)

var wikiLink = regexp.MustCompile(`(<code>)?\[\[\s*([^][|]+?)\s*(?:\|\s*([^][]+?)\s*)?\]\]`)

// ResolveWikiLinks rewrites [[target]] and [[target|Label]] in rendered
// HTML into anchors. Links sitting directly inside <code> are left alone
// so they can be shown literally.
func ResolveWikiLinks(html string, urlFor func(string) string) string {
	return wikiLink.ReplaceAllStringFunc(html, func(match string) string {
		groups := wikiLink.FindStringSubmatch(match)
		if groups[1] != "" {
			return match
		}
		target := groups[2]
		label := groups[3]
		if label == "" {
			label = target
		}
		return fmt.Sprintf("<a href=%q>%s</a>", urlFor(target), label)
	})
}
