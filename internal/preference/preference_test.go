package preference

import "testing"

func TestParse_NoHeader(t *testing.T) {
	pref := Parse("")

	if pref.MaxPageSize != 0 {
		t.Errorf("MaxPageSize = %d, want 0", pref.MaxPageSize)
	}
	if pref.TrackChanges {
		t.Error("TrackChanges should be false when no Prefer header is present")
	}
}

func TestParse_MaxPageSize(t *testing.T) {
	testCases := []struct {
		header string
		want   int
	}{
		{"odata.maxpagesize=5", 5},
		{"odata.maxpagesize=\"7\"", 7},
		{"ODATA.MAXPAGESIZE=3", 3},
		{"maxpagesize=4", 4},
		{"odata.maxpagesize=0", 0},
		{"odata.maxpagesize=-2", 0},
		{"odata.maxpagesize=abc", 0},
		{"return=minimal, odata.maxpagesize=8", 8},
	}

	for _, tc := range testCases {
		pref := Parse(tc.header)
		if pref.MaxPageSize != tc.want {
			t.Errorf("Parse(%q).MaxPageSize = %d, want %d", tc.header, pref.MaxPageSize, tc.want)
		}
	}
}

func TestParse_TrackChanges(t *testing.T) {
	pref := Parse("odata.track-changes, odata.maxpagesize=2")

	if !pref.TrackChanges {
		t.Error("TrackChanges should be true")
	}
	if pref.MaxPageSize != 2 {
		t.Errorf("MaxPageSize = %d, want 2", pref.MaxPageSize)
	}
}

func TestPageSize(t *testing.T) {
	testCases := []struct {
		name   string
		pref   *Preference
		server int
		want   int
	}{
		{"nil preference", nil, 10, 10},
		{"no max", &Preference{}, 10, 10},
		{"lower max", &Preference{MaxPageSize: 3}, 10, 3},
		{"higher max", &Preference{MaxPageSize: 30}, 10, 10},
		{"no server size", &Preference{MaxPageSize: 30}, 0, 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.pref.PageSize(tc.server); got != tc.want {
				t.Errorf("PageSize(%d) = %d, want %d", tc.server, got, tc.want)
			}
		})
	}
}

func TestApplied(t *testing.T) {
	pref := Parse("odata.maxpagesize=3, odata.track-changes")

	if got := pref.Applied(3); got != "odata.maxpagesize=3, odata.track-changes" {
		t.Errorf("Applied(3) = %q", got)
	}
	if got := pref.Applied(10); got != "odata.track-changes" {
		t.Errorf("Applied(10) = %q", got)
	}
	if got := Parse("").Applied(10); got != "" {
		t.Errorf("Applied on empty preference = %q, want empty", got)
	}
	var nilPref *Preference
	if got := nilPref.Applied(10); got != "" {
		t.Errorf("Applied on nil preference = %q, want empty", got)
	}
}
