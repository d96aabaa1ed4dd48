package fetcher

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/bac-archiver/models"
)

// archivePatterns match the publisher's archive naming schemes for a year:
// E_[acd]_..{year}..zip, Bac_{year}_E_[acd]_..zip and {year}..E_[acd]..zip.
func archivePatterns(year string) []*regexp.Regexp {
	y := regexp.QuoteMeta(year)
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)E_[acd]_.*` + y + `.*\.zip$`),
		regexp.MustCompile(`(?i)Bac_` + y + `_E_[acd]_.*\.zip$`),
		regexp.MustCompile(`(?i)` + y + `.*E_[acd].*\.zip$`),
	}
}

// DiscoverLinks returns the exam archives linked from a page, resolved
// against pageURL, de-duplicated and sorted.
func DiscoverLinks(doc *goquery.Document, pageURL, year string) ([]models.SourceLink, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}
	patterns := archivePatterns(year)

	seen := make(map[string]bool)
	var links []models.SourceLink
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || !matchesAny(patterns, href) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, models.SourceLink{URL: abs, Origin: pageURL})
	})

	sort.Slice(links, func(i, j int) bool { return links[i].URL < links[j].URL })
	return links, nil
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
