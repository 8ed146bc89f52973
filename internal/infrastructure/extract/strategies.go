package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Containers the site has been observed to wrap listings in when the plain
// anchor selectors miss a layout experiment.
const containerSelectors = `[data-testid*="item"], .promotion-layout_container___TZ9j, ` +
	`.promotion-layout-no-footer_container__zrTOu, .ultra-plus_box__rGgJn, ` +
	`.agency-item-no-footer_box__0Ss8o`

// strategy is one pure document-to-candidates heuristic. Fallback strategies
// are evaluated in order, so each stays independently testable against
// fixture markup.
type strategy struct {
	name    string
	anchors func(doc *goquery.Document) *goquery.Selection
}

var fallbacks = []strategy{
	{name: "containers", anchors: containerAnchors},
}

// directAnchors selects listing links in both observed href forms: the
// absolute-path style ("/item/<id>") and the bare-path style ("item/<id>").
func directAnchors(doc *goquery.Document) *goquery.Selection {
	absolute := doc.Find(`a[href*="/item/"]`)
	bare := doc.Find(`a[href*="item/"]`).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		return ok && strings.HasPrefix(href, barePathMarker)
	})
	return absolute.AddSelection(bare)
}

// containerAnchors searches inside the known listing containers for anchors
// matching either href form.
func containerAnchors(doc *goquery.Document) *goquery.Selection {
	return doc.Find(containerSelectors).Find("a").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return false
		}
		return strings.Contains(href, pathMarker) || strings.HasPrefix(href, barePathMarker)
	})
}
