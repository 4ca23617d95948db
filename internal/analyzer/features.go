// Package analyzer turns raw authentication log text into a scored verdict,
// an incident narrative and a timeline of security-relevant lines.
//
// Every function in this package is pure: no I/O, no shared state, safe for
// concurrent use.
package analyzer

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"authtriage/pkg/models"
)

// Markers are matched against case-folded text.
const (
	markerFailedPassword   = "failed password"
	markerInvalidUser      = "invalid user"
	markerAuthFailure      = "authentication failure"
	markerTooManyFailures  = "too many authentication failures"
	markerRootUser         = "user=root"
	markerAcceptedPassword = "accepted password"
	markerDisconnecting    = "disconnecting"
)

// ipPrefix matches the first three dotted octets at the start of its input.
// Matching is syntactic only: octets above 255 still match.
var ipPrefix = regexp.MustCompile(`^(?:\p{Nd}{1,3}\.){3}`)

// ExtractFeatures counts the detection markers in raw.
func ExtractFeatures(raw string) models.LogFeatures {
	logs := strings.ToLower(raw)

	f := models.LogFeatures{
		FailedPassword:  strings.Count(logs, markerFailedPassword),
		InvalidUser:     strings.Count(logs, markerInvalidUser),
		AuthFailure:     strings.Count(logs, markerAuthFailure),
		TooManyFailures: strings.Count(logs, markerTooManyFailures),
		RootTargeted:    strings.Contains(logs, markerRootUser),
		SourceIPs:       uniqueIPs(logs),
	}
	return f
}

func uniqueIPs(logs string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, ip := range findIPs(logs) {
		if _, ok := seen[ip]; ok {
			continue
		}
		seen[ip] = struct{}{}
		out = append(out, ip)
	}
	sort.Strings(out)
	return out
}

// findIPs returns dotted quads bounded on both sides by a non-word rune or
// the edge of the text. Word runes are Unicode letters, numbers and '_'.
func findIPs(s string) []string {
	var out []string
	prev := rune(-1)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.Is(unicode.Nd, r) && !isWordRune(prev) {
			if n := matchIPAt(s[i:]); n > 0 {
				out = append(out, s[i:i+n])
				prev, _ = utf8.DecodeLastRuneInString(s[:i+n])
				i += n
				continue
			}
		}
		prev = r
		i += size
	}
	return out
}

// matchIPAt returns the byte length of a dotted quad at the start of s, or 0.
// The last octet is shortened until it ends on a word boundary.
func matchIPAt(s string) int {
	loc := ipPrefix.FindStringIndex(s)
	if loc == nil {
		return 0
	}
	var ends []int
	j := loc[1]
	for len(ends) < 3 && j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if !unicode.Is(unicode.Nd, r) {
			break
		}
		j += size
		ends = append(ends, j)
	}
	for k := len(ends) - 1; k >= 0; k-- {
		next, _ := utf8.DecodeRuneInString(s[ends[k]:])
		if ends[k] == len(s) || !isWordRune(next) {
			return ends[k]
		}
	}
	return 0
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
