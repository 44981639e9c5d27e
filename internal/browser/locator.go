package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// ErrElementNotFound indicates no candidate in a fallback chain resolved
// within the wait window.
var ErrElementNotFound = errors.New("element not found")

// Candidate is one strategy for locating a page element. The printer UI does
// not expose stable identifiers, so each form field carries an ordered chain
// of candidates tried until one resolves: a semantic selector first
// (placeholder or name match), then a type-based one, then an ordinal
// fallback.
type Candidate struct {
	Query string
	By    chromedp.QueryOption
	Desc  string
}

// ByQuery builds a CSS selector candidate
func ByQuery(desc, query string) Candidate {
	return Candidate{Query: query, By: chromedp.ByQuery, Desc: desc}
}

// BySearch builds an XPath candidate
func BySearch(desc, xpath string) Candidate {
	return Candidate{Query: xpath, By: chromedp.BySearch, Desc: desc}
}

// LastPasswordNode picks the device password field from all password-typed
// inputs present in the DOM. After login the login-password field is normally
// gone, leaving exactly one; when two or more remain, login-related fields
// appear earlier in the page layout, so the last node in document order is
// taken. This ordering is a reverse-engineered assumption about the Sharp
// web UI and should not be generalized to other devices.
func LastPasswordNode(nodes []*cdp.Node) (*cdp.Node, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no password input present", ErrElementNotFound)
	}
	return nodes[len(nodes)-1], nil
}

// ButtonTextXPath builds an XPath that matches a button whose text contains
// label, ignoring case.
func ButtonTextXPath(label string) string {
	return fmt.Sprintf(
		`//button[contains(translate(normalize-space(.), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), '%s')]`,
		strings.ToLower(label),
	)
}
