// Package keys builds response-cache keys for transform requests.
package keys

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Prefix starts every key, so a flush can target them all.
const Prefix = "crs:"

// Request is everything that determines a transform response.
type Request struct {
	Kind      string
	Source    string
	Target    string
	Epoch     *float64
	Precision int
	Body      []byte

	// Exclusions is the fingerprint of the exclusion snapshot the response
	// was computed under.
	Exclusions uint64
}

// Key returns "crs:<kind>:<src>><dst>:e=<epoch>:p=<precision>:x=<exclusions>:b=<xxhash64>".
// Identifiers are upper-cased and sanitized so equivalent spellings share a
// key.
func Key(r Request) string {
	epoch := "none"
	if r.Epoch != nil {
		epoch = strconv.FormatFloat(*r.Epoch, 'f', -1, 64)
	}
	return fmt.Sprintf("%s%s:%s>%s:e=%s:p=%d:x=%016x:b=%016x",
		Prefix,
		sanitizeForKey(strings.ToLower(strings.TrimSpace(r.Kind))),
		sanitizeForKey(strings.ToUpper(strings.TrimSpace(r.Source))),
		sanitizeForKey(strings.ToUpper(strings.TrimSpace(r.Target))),
		epoch,
		r.Precision,
		r.Exclusions,
		xxhash.Sum64(r.Body),
	)
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-' || r == '.':
			out = r
		default:
			// Any other rune (including non-ASCII) becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
