package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// JoinChar replaces every run of whitespace in free-text fields.
const JoinChar = "_"

var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

// CanonicalizeText applies Unicode NFC normalization and replaces each run of
// whitespace with a single JoinChar. Split delimiters are left untouched.
func CanonicalizeText(s string) string {
	return whitespaceRun.ReplaceAllString(norm.NFC.String(s), JoinChar)
}

// isBlank reports whether a canonicalized field carries no content.
func isBlank(s string) bool {
	return strings.Trim(s, JoinChar) == ""
}

// DecomposeTitle splits a canonicalized composite title such as
// "Harry_Potter_and_the_Chamber_of_Secrets_(Harry_Potter_#2)" into its title,
// series and book number. ok is false when the title has no '(' and carries
// no series information.
func DecomposeTitle(full string) (title, series, number string, ok bool) {
	head, remainder, found := strings.Cut(full, "(")
	if !found {
		return stripArtifacts(full), "", "", false
	}
	title = stripArtifacts(head)
	series, number, hasNumber := strings.Cut(remainder, "#")
	series = stripSeries(series)
	if hasNumber {
		number = stripArtifacts(number)
	}
	return title, series, number, true
}

// stripArtifacts removes surrounding JoinChar padding and an unbalanced
// trailing ')' until the value is stable.
func stripArtifacts(s string) string {
	for {
		t := strings.Trim(s, JoinChar)
		if strings.HasSuffix(t, ")") && strings.Count(t, ")") > strings.Count(t, "(") {
			t = strings.TrimSuffix(t, ")")
		}
		if t == s {
			return t
		}
		s = t
	}
}

// stripSeries also drops the ", #" separator residue Goodreads-style titles
// leave behind the series name.
func stripSeries(s string) string {
	for {
		t := strings.TrimRight(stripArtifacts(s), ",")
		if t == s {
			return t
		}
		s = t
	}
}
