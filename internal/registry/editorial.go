package registry

import "strings"

// EditorialKeyword is the token added to an item's keywords whenever
// the editorial flag is on
const EditorialKeyword = "editorial"

// EditorialPrefix builds the caption prefix prepended to an editorial
// description: "City, Region - Date: Fact. " with empty parts omitted.
// Stripping relies on exact string-prefix matching, so construction
// must stay deterministic.
func EditorialPrefix(city, region, date, fact string) string {
	head := city
	if region != "" {
		if head != "" {
			head += ", " + region
		} else {
			head = region
		}
	}
	if date != "" {
		if head != "" {
			head += " - " + date
		} else {
			head = date
		}
	}
	if head == "" {
		return ""
	}
	prefix := head + ":"
	if fact != "" {
		prefix += " " + strings.TrimSuffix(fact, ".") + "."
	}
	return prefix + " "
}

// StripEditorialPrefix removes prefix from the front of description
// only on an exact match; otherwise the description is returned
// untouched to avoid corrupting user edits
func StripEditorialPrefix(description, prefix string) string {
	if prefix != "" && strings.HasPrefix(description, prefix) {
		return description[len(prefix):]
	}
	return description
}

// SplitKeywords parses a comma-joined keyword string into trimmed,
// non-empty tokens
func SplitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinKeywords is the inverse of SplitKeywords
func JoinKeywords(tokens []string) string {
	return strings.Join(tokens, ", ")
}

// HasKeywordToken reports whether the keyword string contains the
// token as an exact, case-insensitive entry
func HasKeywordToken(keywords, token string) bool {
	for _, t := range SplitKeywords(keywords) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// PrependKeyword adds token to the front of the keyword string if it
// is not already present
func PrependKeyword(keywords, token string) string {
	if HasKeywordToken(keywords, token) {
		return keywords
	}
	tokens := SplitKeywords(keywords)
	return JoinKeywords(append([]string{token}, tokens...))
}

// RemoveKeywordToken drops every exact, case-insensitive occurrence of
// token from the keyword string
func RemoveKeywordToken(keywords, token string) string {
	tokens := SplitKeywords(keywords)
	out := tokens[:0]
	for _, t := range tokens {
		if !strings.EqualFold(t, token) {
			out = append(out, t)
		}
	}
	return JoinKeywords(out)
}
