package scrape

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrLocalFilesDisabled is returned for file:// inputs when local file access
// is off, as it is for sources submitted over the HTTP API.
var ErrLocalFilesDisabled = eris.New("scrape: local file sources are not accepted")

// LiteralSource resolves inputs that need no fetch: markup pasted in place of
// a URL (first non-space byte is '<') or, when allowFiles is set, a path to a
// local file optionally prefixed with file://. ok is false when input should
// be fetched.
func LiteralSource(input string, allowFiles bool) (html string, ok bool, err error) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "<") {
		return trimmed, true, nil
	}

	path, explicit := strings.CutPrefix(trimmed, "file://")
	if !allowFiles {
		// Never touch the disk here, not even to stat.
		if explicit {
			return "", true, ErrLocalFilesDisabled
		}
		return "", false, nil
	}
	if path == "" || (!explicit && isHTTPURL(path)) {
		return "", false, nil
	}

	info, statErr := os.Stat(path)
	if statErr != nil || info.IsDir() {
		if explicit && statErr != nil {
			return "", true, eris.Wrapf(statErr, "scrape: local file %s", path)
		}
		if explicit {
			return "", true, eris.Errorf("scrape: local file %s is a directory", path)
		}
		return "", false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", true, eris.Wrapf(err, "scrape: read %s", path)
	}
	return string(data), true, nil
}
