package textutil

import "testing"

func TestSlug(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Photosynthesis", "photosynthesis"},
		{"The Water Cycle", "the_water_cycle"},
		{"Newton's 2nd Law!", "newton_s_2nd_law"},
		{"  Élan  Vital  ", "elan_vital"},
		{"---", "topic"},
		{"", "topic"},
	}
	for _, tc := range cases {
		if got := Slug(tc.input); got != tc.want {
			t.Fatalf("Slug(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("the water cycle"); got != "The Water Cycle" {
		t.Fatalf("unexpected title: %q", got)
	}
}
