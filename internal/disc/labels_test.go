package disc

import "testing"

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"THE_GREAT_MOVIE", "The Great Movie"},
		{"family.photos.2019", "Family Photos 2019"},
		{"  Already Nice  ", "Already Nice"},
		{"", "(unlabeled)"},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			if got := DisplayTitle(tc.label); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
