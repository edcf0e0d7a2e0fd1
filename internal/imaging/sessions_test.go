package imaging

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestListCachedSessions(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "sub-01", "ses-pre", "anat", "sub-01_ses-pre_T1w.nii.gz"), 32)
	writeFile(t, filepath.Join(root, "sub-01", "ses-pre", "anat", "sub-01_ses-pre_FLAIR.nii"), 16)
	writeFile(t, filepath.Join(root, "sub-01", "ses-pre", "anat", "notes.txt"), 8)
	writeFile(t, filepath.Join(root, "sub-02", "ses-01", "anat", "sub-02_ses-01_T2w.nii.gz"), 64)
	// Session without an anat directory is skipped.
	if err := os.MkdirAll(filepath.Join(root, "sub-03", "ses-01"), 0o755); err != nil {
		t.Fatal(err)
	}
	// Non-BIDS directories are ignored.
	writeFile(t, filepath.Join(root, "uploaded", "p-0001", "file.nii.gz"), 8)

	sessions := ListCachedSessions(root)
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	first := sessions[0]
	if first.Subject != "sub-01" || first.Session != "ses-pre" {
		t.Errorf("first session = %s/%s", first.Subject, first.Session)
	}
	if len(first.Files) != 2 {
		t.Fatalf("sub-01 files = %d, want 2", len(first.Files))
	}
	byName := map[string]CachedFile{}
	for _, f := range first.Files {
		byName[f.Filename] = f
	}
	t1 := byName["sub-01_ses-pre_T1w.nii.gz"]
	if t1.Modality != "T1w" {
		t.Errorf("T1w modality = %q", t1.Modality)
	}
	if t1.Size != 32 {
		t.Errorf("T1w size = %d, want 32", t1.Size)
	}
	if t1.Path != "sub-01/ses-pre/anat/sub-01_ses-pre_T1w.nii.gz" {
		t.Errorf("T1w path = %q", t1.Path)
	}
	if byName["sub-01_ses-pre_FLAIR.nii"].Modality != "FLAIR" {
		t.Errorf("FLAIR modality = %q", byName["sub-01_ses-pre_FLAIR.nii"].Modality)
	}

	if sessions[1].Subject != "sub-02" || len(sessions[1].Files) != 1 {
		t.Errorf("second session = %+v", sessions[1])
	}
}

func TestListCachedSessionsEmptyRoot(t *testing.T) {
	sessions := ListCachedSessions(t.TempDir())
	if len(sessions) != 0 {
		t.Fatalf("got %d sessions from empty root", len(sessions))
	}
}

func TestModalityFromFilename(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"sub-01_ses-pre_T1w.nii.gz", "T1w"},
		{"sub-01_ses-pre_acq-highres_T2w.nii", "T2w"},
		{"plain.nii", "plain"},
		{"trailing_.nii.gz", "unknown"},
	}
	for _, tt := range tests {
		if got := modalityFromFilename(tt.name); got != tt.want {
			t.Errorf("modalityFromFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
