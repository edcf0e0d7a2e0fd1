package imaging

import (
	"os"
	"path/filepath"
	"strings"
)

// CachedFile is one NIfTI file found in the content cache.
type CachedFile struct {
	Filename string `json:"filename"`
	Modality string `json:"modality"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// CachedSession groups the NIfTI files of one subject/session directory.
type CachedSession struct {
	Subject string       `json:"subject"`
	Session string       `json:"session"`
	Files   []CachedFile `json:"files"`
}

// ListCachedSessions walks sub-*/ses-*/anat under the content root and
// reports every NIfTI file with its modality, derived from the last
// underscore-separated token of the filename (sub-X_ses-Y_T1w.nii.gz -> T1w).
func ListCachedSessions(root string) []CachedSession {
	sessions := []CachedSession{}

	subDirs, err := filepath.Glob(filepath.Join(root, "sub-*"))
	if err != nil {
		return sessions
	}

	for _, subDir := range subDirs {
		if !isDir(subDir) {
			continue
		}
		sesDirs, _ := filepath.Glob(filepath.Join(subDir, "ses-*"))
		for _, sesDir := range sesDirs {
			if !isDir(sesDir) {
				continue
			}
			anatDir := filepath.Join(sesDir, "anat")
			entries, err := os.ReadDir(anatDir)
			if err != nil {
				continue
			}

			files := []CachedFile{}
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() || !isNIfTIName(name) {
					continue
				}
				info, err := e.Info()
				if err != nil {
					continue
				}
				rel, _ := filepath.Rel(root, filepath.Join(anatDir, name))
				files = append(files, CachedFile{
					Filename: name,
					Modality: modalityFromFilename(name),
					Path:     filepath.ToSlash(rel),
					Size:     info.Size(),
				})
			}

			if len(files) > 0 {
				sessions = append(sessions, CachedSession{
					Subject: filepath.Base(subDir),
					Session: filepath.Base(sesDir),
					Files:   files,
				})
			}
		}
	}

	return sessions
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isNIfTIName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".nii") || strings.HasSuffix(lower, ".nii.gz")
}

func modalityFromFilename(name string) string {
	stem := strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".nii")
	parts := strings.Split(stem, "_")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return "unknown"
	}
	return parts[len(parts)-1]
}
