// Package preference parses the OData preferences of a Prefer header that
// influence query evaluation.
package preference

import (
	"strconv"
	"strings"
)

// Preference represents the query-related preferences of a Prefer header.
type Preference struct {
	// MaxPageSize is the client's odata.maxpagesize, zero when absent.
	MaxPageSize  int
	TrackChanges bool
}

// Parse parses a Prefer header value. Unknown or malformed preferences are
// ignored.
func Parse(header string) *Preference {
	pref := &Preference{}
	if header == "" {
		return pref
	}

	for _, p := range strings.Split(header, ",") {
		name, value, _ := strings.Cut(strings.TrimSpace(p), "=")
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch name {
		case "odata.maxpagesize", "maxpagesize":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				pref.MaxPageSize = n
			}
		case "odata.track-changes", "track-changes":
			pref.TrackChanges = true
		}
	}

	return pref
}

// PageSize returns the page size to use given the server's page size. The
// client may only lower it.
func (p *Preference) PageSize(serverPageSize int) int {
	if p == nil || p.MaxPageSize <= 0 {
		return serverPageSize
	}
	if serverPageSize <= 0 || p.MaxPageSize < serverPageSize {
		return p.MaxPageSize
	}
	return serverPageSize
}

// Applied returns the Preference-Applied header value for the preferences
// honored with the given effective page size. Returns empty string if none
// were applied.
func (p *Preference) Applied(pageSize int) string {
	if p == nil {
		return ""
	}
	var applied []string
	if p.MaxPageSize > 0 && pageSize == p.MaxPageSize {
		applied = append(applied, "odata.maxpagesize="+strconv.Itoa(pageSize))
	}
	if p.TrackChanges {
		applied = append(applied, "odata.track-changes")
	}
	return strings.Join(applied, ", ")
}
