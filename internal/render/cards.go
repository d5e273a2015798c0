package render

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// cardPolicy admits only the card markup and http(s) apply links, and forces
// external links to open in a new tab without opener or referrer.
var cardPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("article", "div", "h3", "span", "p")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnFullyQualifiedLinks(true)
	return p
}()

// CardGrid renders cards as the student grid markup.
func CardGrid(cards []Card) template.HTML {
	var b strings.Builder
	for _, c := range cards {
		writeCard(&b, c)
	}
	return template.HTML(cardPolicy.Sanitize(b.String()))
}

func writeCard(b *strings.Builder, c Card) {
	b.WriteString(`<article class="card"><div class="card-header"><h3 class="card-title">`)
	b.WriteString(EscapeHTML(c.Title))
	b.WriteString(`</h3>`)
	if c.Category != "" {
		b.WriteString(`<span class="card-chip">` + EscapeHTML(c.Category) + `</span>`)
	}
	b.WriteString(`</div><div class="card-meta">`)
	writeMeta(b, "Date:", c.DateTime)
	writeMeta(b, "Place:", c.Place)
	writeMeta(b, "Target:", c.Target)
	writeMeta(b, "Capacity:", c.Capacity)
	b.WriteString(`</div><p class="card-description">`)
	b.WriteString(EscapeHTML(c.Description))
	b.WriteString(`</p><div class="card-footer"><span class="deadline">`)
	b.WriteString(EscapeHTML(c.Deadline))
	b.WriteString(`</span>`)
	if c.ApplyURL != "" {
		b.WriteString(`<a class="apply-button" href="` + EscapeHTML(c.ApplyURL) + `" target="_blank" rel="noopener noreferrer">`)
		b.WriteString(ApplyLinkText)
		b.WriteString(`</a>`)
	}
	b.WriteString(`</div></article>`)
}

func writeMeta(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(`<span><span class="card-meta-label">` + label + `</span>` + EscapeHTML(value) + `</span>`)
}
