package helpers

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// TrailingInt parses the integer at the end of s, e.g. 4 from "Page 1 of 4".
func TrailingInt(s string) (int, error) {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	end := len(s)
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, errors.New("no trailing integer")
	}
	return strconv.Atoi(s[start:end])
}

// ResolveURL resolves href against base. Absolute hrefs are returned unchanged.
func ResolveURL(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}
