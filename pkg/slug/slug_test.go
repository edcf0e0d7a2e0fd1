package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		fallback string
		want     string
	}{
		{"simple label", "Anat T1w", "acq", "anat-t1w"},
		{"already safe", "sub-01_ses-02", "sub", "sub-01_ses-02"},
		{"uppercase folded", "FLAIR", "acq", "flair"},
		{"run of specials collapsed", "a///b!!!c", "x", "a-b-c"},
		{"leading and trailing trimmed", "  --hello--  ", "x", "hello"},
		{"dots and dashes kept", "T1w.nii.gz", "x", "t1w.nii.gz"},
		{"empty input", "", "ses", "ses"},
		{"whitespace only", "   ", "ses", "ses"},
		{"all disallowed", "!!!***///", "acq", "acq"},
		{"unicode collapsed", "σκαν πρώτο", "acq", "acq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.in, tt.fallback); got != tt.want {
				t.Errorf("Make(%q, %q) = %q, want %q", tt.in, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestMakeDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		if got := Make("A b/C", "x"); got != "a-b-c" {
			t.Fatalf("iteration %d: got %q", i, got)
		}
	}
}

func TestMakeNeverEmpty(t *testing.T) {
	inputs := []string{"", " ", "-", "--", "///", "!!!", "\t\n"}
	for _, in := range inputs {
		if got := Make(in, "fallback"); got == "" {
			t.Errorf("Make(%q) returned empty string", in)
		}
	}
}
