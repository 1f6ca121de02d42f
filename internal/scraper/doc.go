// Package scraper extracts Zoning Board of Appeals meetings from the City of
// Chicago's board page.
//
// The page lists meeting dates as bare text lines inside table cells that
// follow a bold "Meeting Schedule" label. Each cell belongs to the year named
// in the closest bold heading above it, and agendas, minutes and notices are
// linked from the same cell with the month name in their title. The Extractor
// turns that layout into normalized event.Event records; the Fetcher downloads
// the page politely with retries.
package scraper
