package util

import (
	"path/filepath"
	"strings"
)

// ParseExtensions turns a comma separated extension list ("jpg,JPEG, .png") into
// a set of lower-case extensions with a leading dot. Empty entries are dropped.
func ParseExtensions(list string) map[string]struct{} {
	exts := make(map[string]struct{})
	for _, raw := range strings.Split(list, ",") {
		ext := strings.ToLower(strings.TrimSpace(raw))
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" {
			continue
		}
		exts["."+ext] = struct{}{}
	}
	return exts
}

// MatchesExtension reports whether the path's extension is in the allowed set.
// Comparison is case-insensitive; the set is expected to come from ParseExtensions.
func MatchesExtension(path string, allowed map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := allowed[ext]
	return ok
}

// ParentContains reports whether the parent directory of path contains substr.
// An empty substr matches every path.
func ParentContains(path, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(filepath.Dir(path), substr)
}
