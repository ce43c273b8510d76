package parser

import (
	"net/url"
	"strings"

	"go.jacobcolvin.com/wikitypes/scan"
	"go.jacobcolvin.com/wikitypes/textnorm"
)

const wikipediaURL = "https://en.wikipedia.org/wiki/"

// externalLink rewrites the inner text of a single-bracket link. "[url
// label]" becomes a markdown link; anything else keeps its brackets.
func externalLink(inner string) string {
	if !strings.Contains(inner, "http") {
		return "[" + inner + "]"
	}

	target, label, _ := strings.Cut(strings.TrimSpace(inner), " ")

	return "[" + strings.TrimSpace(label) + "](" + target + ")"
}

// escapeWikiLink replaces the pipes of a wiki link with '@' so the link
// survives directive argument splitting.
func escapeWikiLink(inner string) string {
	return "[[" + strings.ReplaceAll(inner, "|", "@") + "]]"
}

// text resolves the wiki links in s to markdown links and normalizes
// whitespace. It is applied to every free-text value.
func (pp *pageParser) text(s string) string {
	if s == "" {
		return ""
	}

	s = scan.Replace(s, scan.WikiLink, pp.wikiLink)

	return textnorm.Clean(s, textnorm.Norm)
}

// wikiLink renders one escaped wiki link ("Page" or "Page@Label") as a
// markdown link.
func (pp *pageParser) wikiLink(inner string) string {
	target, label := inner, ""
	if i := strings.Index(inner, "@"); i >= 0 {
		target = inner[:i]
		label = inner[strings.LastIndex(inner, "@")+1:]
	}

	parts := strings.Split(strings.TrimPrefix(target, ":"), ":")

	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "wikipedia":
		article := ""
		if len(parts) > 1 {
			article = strings.Join(parts[1:], ":")
		}

		return markdownLink(or(label, article), wikipediaURL+escapePath(article))

	case "file", "image", "category":
		page := strings.Join(parts, ":")

		return markdownLink(or(label, page), pp.table.WikiURL()+escapePath(page))
	}

	return markdownLink(or(label, target), pp.table.WikiURL()+escapePath(target))
}

func markdownLink(label, href string) string {
	return "[" + label + "](" + href + ")"
}

func escapePath(p string) string {
	return (&url.URL{Path: strings.ReplaceAll(strings.TrimSpace(p), " ", "_")}).EscapedPath()
}

func or(a, b string) string {
	if a != "" {
		return a
	}

	return b
}
