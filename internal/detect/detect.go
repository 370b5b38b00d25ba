// Package detect classifies normalized text against the contact-pattern
// library. Detection is deterministic and side-effect-free: the same
// input always yields the same matches, and a Detector can be shared by
// any number of concurrent callers.
package detect

import (
	"sort"
	"strings"

	"github.com/sokohub/moderation/internal/patterns"
)

// Match is one detected contact-sharing attempt. Offsets are byte
// positions in the normalized text the detector was given.
type Match struct {
	Category patterns.Category
	Rule     string // name of the library rule that fired
	Start    int
	End      int
	Text     string
}

// Detector runs a pattern library over normalized text.
type Detector struct {
	lib            *patterns.Library
	platformDomain string
}

// New creates a detector over the given library. platformDomain, when
// non-empty, exempts the marketplace's own links from the URL category
// (sharing a listing link is not a violation).
func New(lib *patterns.Library, platformDomain string) *Detector {
	return &Detector{lib: lib, platformDomain: strings.ToLower(platformDomain)}
}

// Detect returns every match in text, ordered by position. When matches
// from different rules overlap, the rule earlier in the library wins, so
// an address like wa.me/254712345678 is reported once as SOCIAL_HANDLE
// rather than additionally as URL and PHONE.
func (d *Detector) Detect(text string) []Match {
	if text == "" {
		return nil
	}

	var found []Match
	for _, rule := range d.lib.Rules() {
		for _, loc := range rule.Regexp.FindAllStringIndex(text, -1) {
			m := Match{
				Category: rule.Category,
				Rule:     rule.Name,
				Start:    loc[0],
				End:      loc[1],
				Text:     text[loc[0]:loc[1]],
			}
			if m.Category == patterns.CategoryURL && d.isPlatformLink(m.Text) {
				continue
			}
			if overlaps(found, m) {
				continue
			}
			found = append(found, m)
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Start != found[j].Start {
			return found[i].Start < found[j].Start
		}
		return found[i].End > found[j].End
	})
	return found
}

// Categories returns the distinct categories of matches, in text order.
func Categories(matches []Match) []patterns.Category {
	var cats []patterns.Category
	seen := make(map[patterns.Category]bool, len(matches))
	for _, m := range matches {
		if !seen[m.Category] {
			seen[m.Category] = true
			cats = append(cats, m.Category)
		}
	}
	return cats
}

// overlaps reports whether m shares any span with an already-accepted
// match. Earlier rules have priority, so later overlapping matches drop.
func overlaps(accepted []Match, m Match) bool {
	for _, a := range accepted {
		if m.Start < a.End && a.Start < m.End {
			return true
		}
	}
	return false
}

// isPlatformLink reports whether a URL match points at the platform's own
// domain.
func (d *Detector) isPlatformLink(match string) bool {
	if d.platformDomain == "" {
		return false
	}
	host := match
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return host == d.platformDomain || strings.HasSuffix(host, "."+d.platformDomain)
}
