package httpmetrics

// Known ops routes keep their own label; anything else collapses into one
// series so scanners cannot blow up label cardinality.
var knownPaths = map[string]struct{}{
	"/health":      {},
	"/metrics":     {},
	"/debug/vars":  {},
	"/debug/users": {},
}

const otherPath = "other"

func NormalizePath(path string) string {
	if path == "" {
		return otherPath
	}
	if _, ok := knownPaths[path]; ok {
		return path
	}
	return otherPath
}
