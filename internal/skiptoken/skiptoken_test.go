package skiptoken

import (
	"errors"
	"testing"

	"github.com/nlstn/go-odata-engine/internal/queryerrors"
)

func strPtr(s string) *string { return &s }

func TestParsePage(t *testing.T) {
	tests := []struct {
		name    string
		token   *string
		want    int
		wantErr bool
	}{
		{"absent", nil, 0, false},
		{"zero", strPtr("0"), 0, false},
		{"numeric", strPtr("3"), 3, false},
		{"non numeric", strPtr("abc"), 0, true},
		{"negative", strPtr("-1"), 0, true},
		{"empty", strPtr(""), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePage(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, queryerrors.ErrValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				if err.Error() != "invalid skip token" {
					t.Errorf("unexpected message %q", err.Error())
				}
			}
			if got != tt.want {
				t.Errorf("ParsePage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		rawURI string
		page   int
		want   string
	}{
		{"no query", "http://host/svc/People", 1, "http://host/svc/People?%24skiptoken=1"},
		{"existing query", "http://host/svc/People?$filter=Age%20gt%201", 1, "http://host/svc/People?$filter=Age%20gt%201&%24skiptoken=1"},
		{"replaces token", "http://host/svc/People?$skiptoken=1", 2, "http://host/svc/People?%24skiptoken=2"},
		{"replaces encoded token", "http://host/svc/People?%24skiptoken=1", 2, "http://host/svc/People?%24skiptoken=2"},
		{"token before other options", "http://host/svc/People?$skiptoken=1&$top=5", 2, "http://host/svc/People?$top=5&%24skiptoken=2"},
		{"token after other options", "http://host/svc/People?$top=5&$skiptoken=1", 2, "http://host/svc/People?$top=5&%24skiptoken=2"},
		{"relative", "/People", 3, "/People?%24skiptoken=3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextLink(tt.rawURI, tt.page)
			if err != nil {
				t.Fatalf("NextLink() error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("NextLink() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestNextLinkMalformedURI(t *testing.T) {
	for _, raw := range []string{"", "http://host/%zz", "://missing-scheme"} {
		_, err := NextLink(raw, 1)
		if !errors.Is(err, queryerrors.ErrLinkConstruction) {
			t.Errorf("NextLink(%q) error = %v, want link construction error", raw, err)
		}
	}
}

func TestDeltaLink(t *testing.T) {
	tests := []struct {
		name   string
		rawURI string
		token  string
		want   string
	}{
		{"truncates token", "http://host/svc/People", "abcdef123", "http://host/svc/People?%24deltatoken=%2Aabcd"},
		{"exactly four", "http://host/svc/People?$select=Name", "wxyz", "http://host/svc/People?$select=Name&%24deltatoken=%2Awxyz"},
		{"replaces token", "http://host/svc/People?$deltatoken=old1", "new123", "http://host/svc/People?%24deltatoken=%2Anew1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeltaLink(tt.rawURI, tt.token)
			if err != nil {
				t.Fatalf("DeltaLink() error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("DeltaLink() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestDeltaLinkPrefixIndependentOfLength(t *testing.T) {
	short, err := DeltaLink("/People", "abcd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long, err := DeltaLink("/People", "abcdefghijklmnopqrstuvwxyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if short.String() != long.String() {
		t.Errorf("expected identical links, got %q and %q", short, long)
	}
}

func TestDeltaLinkShortToken(t *testing.T) {
	_, err := DeltaLink("/People", "abc")
	if !errors.Is(err, queryerrors.ErrLinkConstruction) {
		t.Errorf("expected link construction error, got %v", err)
	}
}
