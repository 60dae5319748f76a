package harness

import (
	"path/filepath"
	"strings"
)

// imageNameMatches compares the file name of a Windows executable image with the configured
// binary name. Case is ignored and the ".exe" extension is optional on either side.
func imageNameMatches(imagePath, binaryName string) bool {
	if imagePath == "" || binaryName == "" {
		return false
	}
	base := filepath.Base(strings.ReplaceAll(imagePath, `\`, "/"))
	return strings.EqualFold(trimExe(base), trimExe(binaryName))
}

func trimExe(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name[:len(name)-len(".exe")]
	}
	return name
}
