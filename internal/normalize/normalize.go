// Package normalize canonicalizes user-supplied text before contact-pattern
// detection, defeating the common obfuscation tricks used to smuggle phone
// numbers and email addresses past the filter.
//
// Pipeline order (fixed, so behavior is reproducible):
//
//  1. UTF-8 repair (invalid bytes dropped)
//  2. Unicode NFKC normalization, case folding, combining-mark and
//     format-char removal, fullwidth-to-ASCII width folding
//  3. Whitespace collapse to single spaces, trim
//  4. Spelled-out digit substitution ("zero" -> "0") when adjacent to
//     other digits or digit words
//  5. Spelled-out email reassembly ("john dot doe at gmail dot com" ->
//     "john.doe@gmail.com"), anchored on an "at" token followed by a
//     plausible domain so ordinary prose ("Kenya at its best") is left alone
//  6. Leetspeak digit folding inside digit-dominant tokens only
//     ("o712345678" -> "0712345678"); never applied globally
//  7. Separator stripping between digit runs when the joined run fits a
//     phone-number length profile ("0712-345-678" -> "0712345678")
//
// Every function here is total: any string in, a normalized string out,
// no errors. The package holds no mutable state and is safe for
// concurrent use.
package normalize

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Phone length profile for digit-run joining. Runs outside these bounds
// keep their separators: short runs are prices and quantities, longer
// runs are card numbers or reference codes.
const (
	minRunDigits = 7
	maxRunDigits = 13
)

// chainPool holds fresh Unicode transformer chains. Transformers carry
// internal state, so each Normalize call checks one out, resets it and
// returns it.
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip ZWJ/ZWNJ/FEFF etc.
			width.Fold,                         // fullwidth forms to ASCII
		)
	},
}

// Substitution tables. These are tunable policy, not a complete algorithm:
// extend them as new evasion styles show up in moderation review.
var (
	digitWords = map[string]string{
		"zero": "0", "oh": "0", "one": "1", "two": "2", "three": "3",
		"four": "4", "five": "5", "six": "6", "seven": "7", "eight": "8",
		"nine": "9",
	}

	atWords  = map[string]bool{"at": true, "@": true}
	dotWords = map[string]bool{"dot": true, "dt": true, ".": true}

	// Bracketed separators are obfuscation regardless of spacing
	// ("john(at)gmail(dot)com"), so they fold unconditionally.
	wrappedSeps = strings.NewReplacer(
		"(at)", "@", "[at]", "@",
		"(dot)", ".", "[dot]", ".",
	)

	// TLDs accepted when reassembling spelled-out addresses. Leet-folded
	// before lookup, so "c0m" counts as "com".
	tldSet = map[string]bool{
		"com": true, "net": true, "org": true, "io": true, "co": true,
		"ke": true, "me": true, "info": true, "biz": true,
	}

	// Letters folded to digits inside digit-dominant tokens.
	leetDigits = map[rune]rune{'o': '0', 'i': '1', 'l': '1', 's': '5', 'b': '8'}

	wordRe   = regexp.MustCompile(`^[a-z0-9][a-z0-9_+\-]*$`)
	domainRe = regexp.MustCompile(`^[a-z0-9\-]+(?:\.[a-z0-9\-]+)*\.[a-z]{2,}$`)
)

// Normalize returns the canonical form of s per the pipeline above.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err == nil {
		s = ns
	}

	s = wrappedSeps.Replace(collapseWhitespace(s))
	if s == "" {
		return ""
	}

	toks := strings.Split(s, " ")
	toks = foldSpelledDigits(toks)
	toks = foldSpelledEmail(toks)
	for i := range toks {
		toks[i] = foldNumericLeet(toks[i])
	}

	return joinDigitRuns(strings.Join(toks, " "))
}

// collapseWhitespace converts every whitespace run to a single ASCII
// space and trims the result.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}

// core strips decorative punctuation wrapped around a token, so "(dot)"
// and "two," participate in word lookups.
func core(tok string) string {
	return strings.Trim(tok, `,;:!?"'()[]{}<>*`)
}

func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	if tok[0] == '+' {
		tok = tok[1:]
	}
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// leetFoldWord maps digit lookalikes back to letters for table lookups
// ("c0m" -> "com", "d0t" -> "dot").
func leetFoldWord(tok string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '0':
			return 'o'
		case '1':
			return 'i'
		case '3':
			return 'e'
		case '5':
			return 's'
		}
		return r
	}, tok)
}

func isDotWord(tok string) bool { return dotWords[leetFoldWord(tok)] }

// foldSpelledDigits replaces spelled-out digit words with digits, but only
// when a neighboring token is itself a digit word or a bare number. Lone
// digit words in prose ("one day at a time") are left alone.
func foldSpelledDigits(toks []string) []string {
	n := len(toks)
	digitish := make([]bool, n)
	cores := make([]string, n)
	for i, t := range toks {
		cores[i] = core(t)
		_, isWord := digitWords[cores[i]]
		digitish[i] = isWord || isNumeric(cores[i])
	}
	for i, t := range toks {
		d, ok := digitWords[cores[i]]
		if !ok {
			continue
		}
		prev := i > 0 && digitish[i-1]
		next := i < n-1 && digitish[i+1]
		if prev || next {
			toks[i] = strings.Replace(t, cores[i], d, 1)
		}
	}
	return toks
}

// foldSpelledEmail reassembles addresses written with spelled-out
// separators. It anchors on an "at" token, requires a plausible domain
// after it (word [dot word]* ending in a known TLD, or an already-joined
// domain), and only then consumes a local part before it. Without the
// domain requirement, prose uses of "at" would be corrupted.
func foldSpelledEmail(toks []string) []string {
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); {
		if atWords[core(toks[i])] && len(out) > 0 && i+1 < len(toks) {
			if domain, consumed := parseDomain(toks[i+1:]); consumed > 0 {
				if local, removed := parseLocal(out); local != "" {
					out = out[:len(out)-removed]
					out = append(out, local+"@"+domain)
					i += 1 + consumed
					continue
				}
			}
		}
		out = append(out, toks[i])
		i++
	}
	return out
}

// parseDomain reads a domain from the tokens following an "at" anchor.
// Returns the joined domain and the number of tokens consumed, or ("", 0)
// if the tokens do not look like a domain.
func parseDomain(toks []string) (string, int) {
	first := core(toks[0])
	if domainRe.MatchString(first) {
		return first, 1
	}
	if !wordRe.MatchString(first) {
		return "", 0
	}
	labels := []string{first}
	consumed := 1
	for consumed+1 < len(toks) &&
		isDotWord(core(toks[consumed])) &&
		wordRe.MatchString(core(toks[consumed+1])) {
		labels = append(labels, core(toks[consumed+1]))
		consumed += 2
	}
	if len(labels) < 2 {
		return "", 0
	}
	tld := leetFoldWord(labels[len(labels)-1])
	if !tldSet[tld] {
		return "", 0
	}
	labels[len(labels)-1] = tld
	return strings.Join(labels, "."), consumed
}

// parseLocal reads a local part backwards from the end of out:
// word (dot word)* up to three labels. Returns the joined local part and
// how many tokens it spans.
func parseLocal(out []string) (string, int) {
	last := core(out[len(out)-1])
	if !wordRe.MatchString(last) {
		return "", 0
	}
	labels := []string{last}
	removed := 1
	for len(labels) < 3 && len(out)-removed >= 2 {
		dot := core(out[len(out)-removed-1])
		word := core(out[len(out)-removed-2])
		if !isDotWord(dot) || !wordRe.MatchString(word) {
			break
		}
		labels = append([]string{word}, labels...)
		removed += 2
	}
	return strings.Join(labels, "."), removed
}

// foldNumericLeet maps digit-lookalike letters to digits inside a single
// token, but only when the token is digit-dominant: at least four real
// digits, no more lookalikes than digits, and nothing else besides
// separators. Ordinary words ("oslo", "data") never qualify.
func foldNumericLeet(tok string) string {
	digits, mappable := 0, 0
	for _, r := range tok {
		switch {
		case unicode.IsDigit(r):
			digits++
		case leetDigits[r] != 0:
			mappable++
		case r == '+' || isDigitSep(r):
		default:
			return tok
		}
	}
	if digits < 4 || mappable == 0 || mappable > digits {
		return tok
	}
	return strings.Map(func(r rune) rune {
		if d, ok := leetDigits[r]; ok {
			return d
		}
		return r
	}, tok)
}

func isDigitSep(r rune) bool {
	switch r {
	case ' ', '-', '.', ',', '(', ')', '/':
		return true
	}
	return false
}

// joinDigitRuns removes decorative separators between consecutive digit
// groups when the joined run fits the phone length profile. Runs that are
// too short (prices) or too long (card numbers) are copied verbatim,
// separators and all.
func joinDigitRuns(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(rs); {
		r := rs[i]
		plus := r == '+' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])
		if !plus && !unicode.IsDigit(r) {
			b.WriteRune(r)
			i++
			continue
		}

		start := i
		if plus {
			i++
		}
		var digits []rune
		end := i // index just past the last digit consumed
		for i < len(rs) {
			if unicode.IsDigit(rs[i]) {
				digits = append(digits, rs[i])
				i++
				end = i
				continue
			}
			if isDigitSep(rs[i]) {
				// Look past at most three separators for another digit.
				k, n := i, 0
				for k < len(rs) && isDigitSep(rs[k]) && n < 3 {
					k++
					n++
				}
				if k < len(rs) && unicode.IsDigit(rs[k]) {
					i = k
					continue
				}
			}
			break
		}

		if len(digits) >= minRunDigits && len(digits) <= maxRunDigits {
			if plus {
				b.WriteRune('+')
			}
			b.WriteString(string(digits))
		} else {
			b.WriteString(string(rs[start:end]))
		}
		i = end
	}
	return b.String()
}
