package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/parkscout/parkscout/internal/metadata"
	"github.com/parkscout/parkscout/pkg/failure"
)

/*
Responsibilities
- Parse HTML into a DOM tree
- Pull a known field set out of each of the three page shapes:
	- state index page (dropdown navigation of state links)
	- state listing page (ordered park results)
	- site detail page (hero banner + schema.org address markers)

Extraction Strategy
- Structural markers only; no heuristics. The markers are a collaborator
  interface owned by the source site, so each page shape lives behind one
  narrow method and nothing else depends on the markup.
- All-or-nothing: a missing marker fails the whole extraction.
*/

// Structural markers of the source site.
const (
	selectorStateNav      = "ul.dropdown-menu.SearchBar-keywordSearch"
	selectorResultsArea   = "#parkListResultsArea"
	selectorResultHeading = "h3"
	selectorCategory      = ".Hero-designationContainer span.Hero-designation"
	selectorTitle         = ".Hero-titleContainer a"
	selectorLocality      = "span[itemprop='addressLocality']"
	selectorRegion        = "span[itemprop='addressRegion']"
	selectorZipcode       = "span[itemprop='postalCode']"
	selectorPhone         = "span[itemprop='telephone']"
)

type DomExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDomExtractor(
	metadataSink metadata.MetadataSink,
) DomExtractor {
	return DomExtractor{
		metadataSink: metadataSink,
	}
}

// ExtractStateDirectory pulls the state-name → listing-URL mapping out of
// the index page. State names are lower-cased and trimmed; relative hrefs
// are resolved against baseURL.
func (d *DomExtractor) ExtractStateDirectory(
	sourceUrl url.URL,
	htmlByte []byte,
	baseURL string,
) (StateDirectory, failure.ClassifiedError) {
	doc, parseErr := d.parse(sourceUrl, htmlByte)
	if parseErr != nil {
		return nil, parseErr
	}

	nav := doc.Find(selectorStateNav).First()
	if nav.Length() == 0 {
		return nil, d.recordParseError(sourceUrl, "DomExtractor.ExtractStateDirectory", &ParseError{
			Message:   "state navigation structure absent from index page",
			Retryable: false,
			Cause:     ErrCauseNoStateNav,
		})
	}

	directory := make(StateDirectory)
	nav.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(anchor.Text()))
		href, ok := anchor.Attr("href")
		if name == "" || !ok {
			return
		}
		directory[name] = baseURL + href
	})

	if len(directory) == 0 {
		return nil, d.recordParseError(sourceUrl, "DomExtractor.ExtractStateDirectory", &ParseError{
			Message:   "state navigation contains no state links",
			Retryable: false,
			Cause:     ErrCauseNoStateNav,
		})
	}

	return directory, nil
}

// ExtractSiteLinks returns one candidate href per listed park, in page
// order. Hrefs are returned as found; the caller resolves them.
func (d *DomExtractor) ExtractSiteLinks(
	sourceUrl url.URL,
	htmlByte []byte,
) ([]string, failure.ClassifiedError) {
	doc, parseErr := d.parse(sourceUrl, htmlByte)
	if parseErr != nil {
		return nil, parseErr
	}

	results := doc.Find(selectorResultsArea).First()
	if results.Length() == 0 {
		return nil, d.recordParseError(sourceUrl, "DomExtractor.ExtractSiteLinks", &ParseError{
			Message:   "park results container absent from listing page",
			Retryable: false,
			Cause:     ErrCauseNoResultsArea,
		})
	}

	var links []string
	results.Find(selectorResultHeading).Each(func(_ int, heading *goquery.Selection) {
		if href, ok := heading.Find("a").First().Attr("href"); ok {
			links = append(links, href)
		}
	})

	return links, nil
}

// ExtractSiteDetail pulls the field set out of a site detail page.
// Every marker must be present; extraction fails as a whole when one is
// absent. Marker text may still be empty (some sites carry a blank
// category).
func (d *DomExtractor) ExtractSiteDetail(
	sourceUrl url.URL,
	htmlByte []byte,
) (SiteDetailFields, failure.ClassifiedError) {
	doc, parseErr := d.parse(sourceUrl, htmlByte)
	if parseErr != nil {
		return SiteDetailFields{}, parseErr
	}

	fields := SiteDetailFields{}
	for _, marker := range []struct {
		name     string
		selector string
		dest     *string
	}{
		{"category", selectorCategory, &fields.Category},
		{"name", selectorTitle, &fields.Name},
		{"locality", selectorLocality, &fields.Locality},
		{"region", selectorRegion, &fields.Region},
		{"zipcode", selectorZipcode, &fields.Zipcode},
		{"phone", selectorPhone, &fields.Phone},
	} {
		selection := doc.Find(marker.selector).First()
		if selection.Length() == 0 {
			return SiteDetailFields{}, d.recordParseError(sourceUrl, "DomExtractor.ExtractSiteDetail", &ParseError{
				Message:   fmt.Sprintf("site detail page is missing the %s marker", marker.name),
				Retryable: false,
				Cause:     ErrCauseMissingField,
			})
		}
		*marker.dest = strings.TrimSpace(selection.Text())
	}

	return fields, nil
}

func (d *DomExtractor) parse(sourceUrl url.URL, htmlByte []byte) (*goquery.Document, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlByte))
	if err != nil {
		return nil, d.recordParseError(sourceUrl, "DomExtractor.parse", &ParseError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		})
	}
	return doc, nil
}

func (d *DomExtractor) recordParseError(sourceUrl url.URL, action string, parseError *ParseError) failure.ClassifiedError {
	d.metadataSink.RecordError(
		time.Now(),
		"extractor",
		action,
		mapParseErrorToMetadataCause(parseError),
		parseError.Message,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, sourceUrl.String()),
		},
	)
	return parseError
}
