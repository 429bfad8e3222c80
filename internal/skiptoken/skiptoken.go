// Package skiptoken builds the continuation links of server-driven paging and
// change tracking. The request URI is rewritten at string level: existing
// $skiptoken / $deltatoken options are stripped and a fresh one is appended.
package skiptoken

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/nlstn/go-odata-engine/internal/queryerrors"
)

// Percent-encoded option names as they appear in generated links.
const (
	encodedSkipToken  = "%24skiptoken="
	encodedDeltaToken = "%24deltatoken="
	encodedAsterisk   = "%2A"

	// deltaTokenPrefixLength is the number of token characters embedded in a delta link.
	deltaTokenPrefixLength = 4
)

var (
	skipTokenPattern  = regexp.MustCompile(`(\$|%24)skiptoken=[^&]*&?`)
	deltaTokenPattern = regexp.MustCompile(`(\$|%24)deltatoken=[^&]*&?`)
)

// ParsePage reads the page number carried by a skip token. A nil token is page 0.
func ParsePage(token *string) (int, error) {
	if token == nil {
		return 0, nil
	}
	page, err := strconv.Atoi(strings.TrimSpace(*token))
	if err != nil || page < 0 {
		return 0, queryerrors.Validation("invalid skip token")
	}
	return page, nil
}

// NextLink returns rawURI with its $skiptoken replaced by page.
func NextLink(rawURI string, page int) (*url.URL, error) {
	base, err := strip(rawURI, skipTokenPattern)
	if err != nil {
		return nil, err
	}
	return build(appendOption(base, encodedSkipToken+strconv.Itoa(page)))
}

// DeltaLink returns rawURI with its $deltatoken replaced by "*" followed by
// the first four characters of token.
func DeltaLink(rawURI, token string) (*url.URL, error) {
	if len(token) < deltaTokenPrefixLength {
		return nil, queryerrors.LinkConstruction("delta token is too short", nil)
	}
	base, err := strip(rawURI, deltaTokenPattern)
	if err != nil {
		return nil, err
	}
	return build(appendOption(base, encodedDeltaToken+encodedAsterisk+token[:deltaTokenPrefixLength]))
}

func strip(rawURI string, pattern *regexp.Regexp) (string, error) {
	if strings.TrimSpace(rawURI) == "" {
		return "", queryerrors.LinkConstruction("request URI is empty", nil)
	}
	if _, err := url.Parse(rawURI); err != nil {
		return "", queryerrors.LinkConstruction("malformed request URI", err)
	}
	stripped := pattern.ReplaceAllString(rawURI, "")
	return strings.TrimRight(stripped, "?&"), nil
}

func appendOption(base, option string) string {
	if strings.Contains(base, "?") {
		return base + "&" + option
	}
	return base + "?" + option
}

func build(link string) (*url.URL, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, queryerrors.LinkConstruction("malformed continuation link", err)
	}
	return u, nil
}
