// Package patterns holds the versioned detection rule sets used by the
// contact-information detector. Each rule is a named, compiled regular
// expression tagged with the violation category it detects. Rules are
// written against *normalized* text (lower-cased, whitespace-collapsed,
// obfuscation folded — see internal/normalize), which keeps each
// expression simple enough to test in isolation.
package patterns

import "regexp"

// Category classifies the kind of contact-sharing attempt a rule detects.
type Category string

const (
	CategoryPhone        Category = "PHONE"
	CategoryEmail        Category = "EMAIL"
	CategorySocialHandle Category = "SOCIAL_HANDLE"
	CategoryURL          Category = "URL"
	CategoryOther        Category = "OTHER"
)

// Pattern is one named detection rule.
type Pattern struct {
	Name     string
	Category Category
	Regexp   *regexp.Regexp
}

// Library is an immutable, versioned set of detection rules. Rules are
// ordered by match priority: when two rules match overlapping spans, the
// earlier rule in the library wins (e.g. an email address containing
// digits is reported as EMAIL, not PHONE).
type Library struct {
	version  string
	patterns []Pattern
}

// DefaultVersion identifies the built-in rule set.
const DefaultVersion = "v1"

// Compiled rule set. Compiled once at package init and reused for every
// call, making the library safe and efficient for concurrent use.
var defaultPatterns = []Pattern{
	// EMAIL first: an address like john.doe1984@gmail.com contains digit
	// runs and a dotted domain that would otherwise trip PHONE or URL.
	{
		Name:     "email",
		Category: CategoryEmail,
		Regexp:   regexp.MustCompile(`[a-z0-9][a-z0-9._%+\-]*@[a-z0-9][a-z0-9.\-]*\.[a-z]{2,}`),
	},

	// Messenger deep links. Matched before the generic URL rule so that
	// wa.me/254712345678 is reported as SOCIAL_HANDLE, not URL or PHONE.
	{
		Name:     "messenger_link",
		Category: CategorySocialHandle,
		Regexp:   regexp.MustCompile(`(?:wa\.me/|t\.me/|telegram\.me/|instagram\.com/|facebook\.com/|fb\.com/|tiktok\.com/@?|x\.com/|twitter\.com/)[a-z0-9_.+\-]+`),
	},
	// "@handle" directly preceded by a platform cue word. A bare @handle
	// with no cue is too ambiguous to flag (false positives on quoting).
	{
		Name:     "cued_handle",
		Category: CategorySocialHandle,
		Regexp:   regexp.MustCompile(`\b(?:whatsapp|telegram|insta|instagram|ig|tiktok|snapchat|snap|twitter)\b[^@]{0,16}@[a-z0-9_.]{2,}`),
	},

	// Generic external links. The bare-domain variant requires a trailing
	// "/" to avoid false positives on version strings like "v2.0" or
	// decimal numbers like "3.14".
	{
		Name:     "url",
		Category: CategoryURL,
		Regexp:   regexp.MustCompile(`(?:https?://\S+|www\.\S+|\b[a-z0-9\-]+(?:\.[a-z0-9\-]+)*\.(?:com|net|org|io|co|ke|me|xyz|info|biz|link)/\S*)`),
	},

	// Phone rules run last and only against contiguous digit runs (the
	// normalizer joins separator-split runs that fit a phone length
	// profile). Length bounds reject short numeric runs such as prices;
	// runs longer than 13 digits fail the trailing boundary and are
	// ignored (card numbers, reference codes).
	{
		Name:     "phone_intl",
		Category: CategoryPhone,
		Regexp:   regexp.MustCompile(`\+\d{9,13}\b`),
	},
	{
		Name:     "phone_local",
		Category: CategoryPhone,
		// Kenyan-style local numbers: leading 0 plus 8-9 digits
		// (0712345678, 0112345678).
		Regexp: regexp.MustCompile(`\b0\d{8,9}\b`),
	},
	{
		Name:     "phone_digit_run",
		Category: CategoryPhone,
		Regexp:   regexp.MustCompile(`\b[1-9]\d{8,12}\b`),
	},
}

// Default returns the built-in rule library.
func Default() *Library {
	return &Library{version: DefaultVersion, patterns: defaultPatterns}
}

// New builds a library from caller-supplied rules, in priority order.
// Intended for policy tuning and tests; production callers use Default.
func New(version string, rules []Pattern) *Library {
	return &Library{version: version, patterns: rules}
}

// Version reports the rule-set version, recorded with every decision.
func (l *Library) Version() string { return l.version }

// Rules returns the rule set in priority order. The returned slice is
// shared; callers must not modify it.
func (l *Library) Rules() []Pattern { return l.patterns }
