// internal/export/export.go
//
// Saving the exported artifact to disk. The backend assembles the
// document; this package only derives a filename from the RFP title and
// writes the opaque bytes under the configured export directory.

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

const artifactExt = ".docx"

// Filename derives a safe artifact filename from the document title.
// Whitespace collapses to underscores and path separators are dropped.
func Filename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "RFP"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-")
	title = replacer.Replace(title)
	title = strings.Join(strings.Fields(title), "_")
	return title + artifactExt
}

// Save writes the artifact into dir, creating the directory as needed.
// An existing file with the same name is never overwritten; a numeric
// suffix is appended instead. Returns the full path written.
func Save(dir, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", oops.In("export").Errorf("empty artifact")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", oops.In("export").Wrapf(err, "ensure export dir %s", dir)
	}
	path := UniquePath(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", oops.In("export").Wrapf(err, "write artifact")
	}
	return path, nil
}

// UniquePath returns path unchanged when free, otherwise appends a
// numeric suffix before the extension so repeated exports never
// overwrite an earlier artifact.
func UniquePath(dir, filename string) string {
	candidate := filepath.Join(dir, filename)
	if _, err := os.Stat(candidate); err != nil {
		return candidate
	}
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i := 2; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}
