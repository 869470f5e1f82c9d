package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	bracketedID   = regexp.MustCompile(`\[[A-Za-z0-9_-]{11}\]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	emptyPairs    = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
	leadingDash   = regexp.MustCompile(`^\s*-+\s*`)
	dashBeforeExt = regexp.MustCompile(`\s*-?\s*(\.[A-Za-z0-9]+)$`)
	yearMarker    = regexp.MustCompile(`\(\d{4}\)`)
)

// lookalikes maps Unicode punctuation that commonly appears in video titles
// to plain ASCII. Runs before the illegal-character pass so a full-width pipe
// degrades to a dash in one application, keeping Clean idempotent.
var lookalikes = strings.NewReplacer(
	"｜", "|", // full-width pipe
	"—", "-", // em dash
	"–", "-", // en dash
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"…", "...",
)

// illegal replaces characters a portable filesystem path cannot carry.
var illegal = strings.NewReplacer(
	"<", "-",
	">", "-",
	":", "-",
	`"`, "-",
	"/", "-",
	`\`, "-",
	"|", "-",
	"?", "-",
	"*", "-",
)

var controlStripper = runes.Remove(runes.In(unicode.C))

// Clean transforms a raw output filename into a cleaned, year-annotated,
// filesystem-safe name. The pipeline is order-sensitive and idempotent:
// re-applying it to its own output with the same year and rules is a no-op.
// It performs no filesystem access and never fails; pathological input
// degrades to a shorter string.
func Clean(name, releaseYear string, phrases []string) string {
	s := bracketedID.ReplaceAllString(name, "")
	for _, phrase := range phrases {
		s = applyPhrase(s, phrase)
	}
	s = lookalikes.Replace(s)
	s = stripControl(s)
	s = illegal.Replace(s)
	s = tidy(s)
	s = insertYear(s, releaseYear)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// applyPhrase removes every match of one configured cleanup rule. A phrase is
// tried as a regular expression first; if it does not compile it is treated
// as a literal.
func applyPhrase(s, phrase string) string {
	if phrase == "" {
		return s
	}
	if re, err := regexp.Compile(phrase); err == nil {
		return re.ReplaceAllString(s, "")
	}
	return strings.ReplaceAll(s, phrase, "")
}

func stripControl(s string) string {
	out, _, err := transform.String(controlStripper, s)
	if err != nil {
		return s
	}
	return out
}

// tidy collapses the debris earlier passes leave behind: whitespace runs,
// doubled dash separators, orphaned dashes around the extension, and bracket
// pairs whose content was removed.
func tidy(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	for {
		collapsed := strings.ReplaceAll(s, " - - ", " - ")
		if collapsed == s {
			break
		}
		s = collapsed
	}
	s = emptyPairs.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = leadingDash.ReplaceAllString(s, "")
	s = dashBeforeExt.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// insertYear appends "(YYYY)" before the extension unless the name already
// carries a parenthesized year.
func insertYear(name, year string) string {
	year = strings.TrimSpace(year)
	if len(year) != 4 || !allDigits(year) {
		return name
	}
	if yearMarker.MatchString(name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	stem = strings.TrimRight(stem, " -")
	if stem == "" {
		return name
	}
	return stem + " (" + year + ")" + ext
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
