package scraper

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/citybureau/zba-events/internal/event"
	"golang.org/x/net/html"
)

var (
	cellMatcher        = cascadia.MustCompile("td")
	boldMatcher        = cascadia.MustCompile("strong, b")
	labelStrongMatcher = cascadia.MustCompile("p > strong:first-of-type")

	yearPattern     = regexp.MustCompile(`\d{4}`)
	monthDayPattern = regexp.MustCompile(`(\w+)\s+(\d+)`)
)

// Description returns the first text of the first paragraph whose opening
// text contains phrase, trimmed. It returns "" when no paragraph matches.
func Description(doc *goquery.Document, phrase string) string {
	description := ""
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		texts := directText(p.Get(0))
		if len(texts) > 0 && strings.Contains(texts[0], phrase) {
			description = strings.TrimSpace(texts[0])
			return false
		}
		return true
	})
	return description
}

// ScheduleColumns returns every table cell that comes after the first
// paragraph whose leading bold text contains label, in document order.
func ScheduleColumns(tree *Tree, label string) []*html.Node {
	for _, strong := range tree.All(labelStrongMatcher) {
		for _, text := range directText(strong) {
			if strings.Contains(text, label) {
				return tree.Following(strong.Parent, cellMatcher)
			}
		}
	}
	return nil
}

// ResolveYear returns the first four digit number in the closest bold text
// preceding column. The closest heading always wins; earlier headings are not
// consulted when it has no year. Failures are *ContextError.
func ResolveYear(tree *Tree, column *html.Node) (string, error) {
	heading, ok := tree.Preceding(column, boldMatcher)
	if !ok {
		return "", &ContextError{Err: ErrNoYear}
	}
	texts := directText(heading)
	for _, text := range texts {
		if year := yearPattern.FindString(text); year != "" {
			return year, nil
		}
	}
	return "", &ContextError{Heading: strings.TrimSpace(strings.Join(texts, " ")), Err: ErrNoYear}
}

// ColumnLines returns the non-blank text lines placed directly in column.
// Text inside links and other child elements is not a meeting line.
func ColumnLines(column *html.Node) []string {
	texts := directText(column)
	lines := make([]string, 0, len(texts))
	for _, text := range texts {
		lines = append(lines, strings.TrimSpace(text))
	}
	return lines
}

// ParseStart turns a line such as "March 3" and a year such as "2021" into
// the meeting start. The time of day is always at.
func ParseStart(line, year string, at event.Clock) (event.Moment, error) {
	m := monthDayPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return event.Moment{}, ErrNoMonthDay
	}
	t, err := time.Parse("January 2 2006", m[1]+" "+m[2]+" "+year)
	if err != nil {
		return event.Moment{}, err
	}
	clock := at
	return event.Moment{
		Date: event.DateOf(t),
		Time: &clock,
		Note: "",
	}, nil
}

// MatchDocuments returns a link for every anchor in column whose title (or
// aria-label) contains month, in document order. hrefs are resolved against
// base and anchors without an href are ignored.
func MatchDocuments(column *goquery.Selection, month string, base *url.URL) []event.Link {
	links := make([]event.Link, 0)
	column.Find("a").Each(func(_ int, a *goquery.Selection) {
		label, ok := a.Attr("title")
		if !ok {
			label = a.AttrOr("aria-label", "")
		}
		if !strings.Contains(label, month) {
			return
		}
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		links = append(links, event.Link{
			URL:  base.ResolveReference(ref).String(),
			Note: strings.TrimSpace(a.Text()),
		})
	})
	return links
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
