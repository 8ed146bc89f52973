package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ListingRadar/internal/domain"
	"ListingRadar/internal/ports"
)

const (
	listingBaseURL = "https://www.yad2.co.il/vehicles"
	pathMarker     = "/item/"
	barePathMarker = "item/"

	// Title served by the site's bot-challenge interstitial.
	captchaTitle = "ShieldSquare Captcha"

	// A real results page carries at least this many listing links; fewer
	// suggests the primary selectors missed the layout in use.
	minPlausibleCandidates = 15

	// Sentinel for an href whose listing id could not be derived. Records
	// carrying it are never emitted, persisted, or announced.
	unknownID = "unknown"
)

// Extractor pulls listing records out of a search results document using a
// cascade of selector strategies. The markup is third-party and changes
// between layout experiments, so each field degrades independently rather
// than failing the whole record.
type Extractor struct {
	baseURL       string
	minCandidates int
	logger        *slog.Logger
}

var _ ports.Extractor = (*Extractor)(nil)

// New builds an extractor for the marketplace's vehicle search pages.
func New(log *slog.Logger) *Extractor {
	return &Extractor{
		baseURL:       listingBaseURL,
		minCandidates: minPlausibleCandidates,
		logger:        log,
	}
}

// Extract parses the document and returns every distinct listing found.
// It fails with domain.ErrCaptchaDetected on the bot-challenge page and with
// domain.ErrNoListings when no strategy produced a single candidate link.
func (e *Extractor) Extract(html string) ([]domain.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	if doc.Find("title").First().Text() == captchaTitle {
		return nil, domain.ErrCaptchaDetected
	}

	anchors := e.candidates(doc)
	if anchors.Length() == 0 {
		return nil, domain.ErrNoListings
	}
	e.debug("candidate links selected", "count", anchors.Length())

	seen := map[string]struct{}{}
	records := make([]domain.ListingRecord, 0, anchors.Length())
	anchors.Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || !strings.Contains(href, barePathMarker) {
			return
		}

		id := listingID(href)
		if id == unknownID {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}

		records = append(records, e.buildRecord(id, href, link))
	})

	e.debug("listings extracted", "count", len(records))
	return records, nil
}

// candidates runs the primary anchor selection, then walks the fallback
// strategies in order while the working set stays below the plausibility
// threshold. A fallback replaces the working set only when it finds strictly
// more links.
func (e *Extractor) candidates(doc *goquery.Document) *goquery.Selection {
	working := directAnchors(doc)
	for _, s := range fallbacks {
		if working.Length() >= e.minCandidates {
			break
		}
		alt := s.anchors(doc)
		e.debug("fallback strategy evaluated", "strategy", s.name, "count", alt.Length())
		if alt.Length() > working.Length() {
			working = alt
		}
	}
	return working
}

func (e *Extractor) buildRecord(id, href string, link *goquery.Selection) domain.ListingRecord {
	rec := domain.ListingRecord{
		ID:   id,
		Link: e.absoluteLink(href),
	}

	rec.Title = firstText(link,
		`[data-nagish="feed-item-section-title"]`,
		`h2, .feed-item-info-section_heading__Bp32t`,
	)
	rec.Price = firstText(link,
		`[data-testid="price"]`,
		`.price_price__xQt90, .feed-item-left-side-section_priceBox__PvCVc`,
	)
	rec.Agency = firstText(link,
		`.feed-item-image-section_agencyName__U_wJp`,
		`.agencyName, [class*="agencyName"]`,
	)

	yearHand := firstText(link,
		`.feed-item-info-section_yearAndHandBox__H5oQ0 span`,
		`.feed-item-info-section_yearAndHandBox__H5oQ0`,
	)
	if parts := strings.Split(yearHand, "•"); len(parts) >= 2 {
		rec.Year = strings.TrimSpace(parts[0])
		rec.Hand = strings.TrimSpace(parts[1])
	}

	img := link.Find(`[data-testid="image"]`).First()
	if img.Length() == 0 {
		img = link.Find("img").First()
	}
	rec.Image = img.AttrOr("src", "")

	return rec
}

func (e *Extractor) absoluteLink(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return e.baseURL + href
}

// listingID derives the listing identity from the href path segment after
// the item marker, trimmed at the query string. Both the absolute-path and
// bare-path link forms are tried.
func listingID(href string) string {
	for _, marker := range []string{pathMarker, barePathMarker} {
		_, rest, found := strings.Cut(href, marker)
		if !found {
			continue
		}
		id, _, _ := strings.Cut(rest, "?")
		if id != "" {
			return id
		}
	}
	return unknownID
}

// firstText returns the trimmed text of the first selector alternative that
// matches non-empty content inside the anchor. Text spans the full matched
// set: split fields (like the year and hand spans) render as one string.
func firstText(link *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(link.Find(sel).Text()); text != "" {
			return text
		}
	}
	return ""
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
