package position

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathFromURI converts a file:// URI into a filesystem path. Anything that is
// not a file URI is treated as a path already.
func PathFromURI(uri string) string {
	if !strings.HasPrefix(uri, "file:") {
		return filepath.Clean(uri)
	}

	u, err := url.Parse(uri)
	if err != nil {
		// fall back to stripping the scheme by hand
		return filepath.Clean(strings.TrimPrefix(strings.TrimPrefix(uri, "file://"), "file:"))
	}

	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	// windows drive letters come through as /C:/...
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.Clean(filepath.FromSlash(path))
}

// URIFromPath converts an absolute filesystem path into a file:// URI.
func URIFromPath(path string) string {
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}
