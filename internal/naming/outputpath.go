package naming

import (
	"os"
	"path/filepath"
	"strings"
)

// Recognized extensions, with leading dot. Matching is case-sensitive.
const (
	SourceExt = ".silk"
	TargetExt = ".mp3"
	WAVExt    = ".wav"
)

// IsSource reports whether path carries the SILK source extension exactly
// after a non-empty stem. A bare ".silk" is not a source: its output name
// would be ".mp3".
func IsSource(path string) bool {
	base := filepath.Base(path)
	return filepath.Ext(base) == SourceExt && len(base) > len(SourceExt)
}

// OutputPath returns input with its final extension replaced by [TargetExt].
// An input without an extension gets [TargetExt] appended.
func OutputPath(input string) string {
	return SidecarPath(input, TargetExt)
}

// SidecarPath returns path with its final extension replaced by ext.
func SidecarPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// OutputExists reports whether any filesystem entry exists at path. A
// dangling symlink counts as existing so it is never replaced.
func OutputExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
