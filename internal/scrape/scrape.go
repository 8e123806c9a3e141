// Package scrape reads login state out of the portal's HTML pages.
//
// The portal has no API, so extraction is positional against the markup it
// emits. Every function here works on the raw page text and has no side
// effects.
package scrape

import (
	"net/netip"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"iitb-internet/internal/model"
)

const (
	checkedMarker = `checked="checked"`

	bannedMarker      = "window.location.href='https://internet.iitb.ac.in/baned.php'"
	badPasswordMarker = "window.location.href='https://internet.iitb.ac.in/badpw.php'"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// activeRow returns the page text preceding the checked radio button of the
// active session row.
func activeRow(html string) (string, bool) {
	idx := strings.Index(html, checkedMarker)
	if idx < 0 {
		return html, false
	}
	return html[:idx], true
}

// ExtractUser returns the user name shown on the logout page.
func ExtractUser(html string) (string, error) {
	row, ok := activeRow(html)
	if !ok {
		return "", errors.Wrap(model.ErrScrapeMismatch, "user: no checked session row")
	}
	if i := strings.LastIndex(row, "<tr>"); i >= 0 {
		row = row[i+len("<tr>"):]
	}
	if i := strings.Index(row, "</center>"); i >= 0 {
		row = row[:i]
	}

	fields := strings.Fields(tagRe.ReplaceAllString(row, " "))
	if len(fields) == 0 {
		return "", errors.Wrap(model.ErrScrapeMismatch, "user: empty session row")
	}
	return fields[len(fields)-1], nil
}

// ExtractIP returns the client IP bound to the active session on the logout page.
func ExtractIP(html string) (string, error) {
	row, _ := activeRow(html)
	if i := strings.LastIndex(row, "value="); i >= 0 {
		row = row[i+len("value="):]
	}
	ip := strings.Trim(row, ` "`)

	if !isIPv4(ip) {
		return "", errors.Wrapf(model.ErrMalformedData, "expected IP, got %q", truncate(ip, 64))
	}
	return ip, nil
}

// isIPv4 accepts only plain dotted-decimal IPv4, not IPv4-mapped IPv6.
func isIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

func IsBanned(html string) bool {
	return strings.Contains(html, bannedMarker)
}

func IsBadPassword(html string) bool {
	return strings.Contains(html, badPasswordMarker)
}

// Title returns the trimmed <title> of a page, or "" if it has none.
// Only used to describe unexpected pages in logs.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
