package ratelimit

import "strings"

// Route identifies requests by method and path. A path ending in "/" matches
// every path below it.
type Route struct {
	Method string
	Path   string
}

// IsExempt reports whether the request matches one of routes.
func IsExempt(method, path string, routes []Route) bool {
	for _, r := range routes {
		if r.Method != "" && r.Method != method {
			continue
		}
		if r.Path == path {
			return true
		}
		if strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return true
		}
	}
	return false
}
