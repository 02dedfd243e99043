package data

import "strings"

// Separator joins item names into a path. A single slash is common in item
// names, so paths use a double slash instead.
const Separator = "//"

// GetPath returns the absolute path of item, built from the names of its
// ancestors up to, but excluding, the root. A direct child of the root yields
// "//Name".
func GetPath(item Item) string {
	var parts []string
	for current := item; current != nil && current.Parent() != nil; current = current.Parent() {
		parts = append(parts, current.Name())
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return Separator + strings.Join(parts, Separator)
}

// ChildPath returns the path of a child named name below parentPath.
// The root has the empty parent path.
func ChildPath(parentPath, name string) string {
	if parentPath == Separator {
		parentPath = ""
	}
	return parentPath + Separator + name
}

// Resolve walks path segment by segment from root, matching direct children by
// exact name. Every step but the last must land on a container. Returns nil if
// a segment cannot be found or the path has no segments.
func Resolve(tree Tree, root Item, path string) Item {
	segments := Parse(path)
	if len(segments) == 0 || root == nil {
		return nil
	}

	current := root
	for i, segment := range segments {
		if !current.Kind().IsContainer() {
			return nil
		}

		var found Item
		for _, child := range tree.Children(current) {
			if child.Name() == segment {
				found = child
				break
			}
		}

		if found == nil {
			return nil
		}

		if i == len(segments)-1 {
			return found
		}

		current = found
	}

	return nil
}

// IsPath reports whether s should be treated as a path rather than a name.
func IsPath(s string) bool {
	return strings.Contains(s, Separator)
}

// IsAbsolute reports whether s starts with the separator.
func IsAbsolute(s string) bool {
	return strings.HasPrefix(s, Separator)
}

// Parse splits s into its non-empty segments.
func Parse(s string) []string {
	segments := strings.Split(s, Separator)
	result := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment != "" {
			result = append(result, segment)
		}
	}
	return result
}

// Join joins the segments of all parts with the separator.
// The result carries no leading separator.
func Join(parts ...string) string {
	var segments []string
	for _, part := range parts {
		segments = append(segments, Parse(part)...)
	}
	return strings.Join(segments, Separator)
}

// Normalize returns the canonical absolute form of s. Repeated separators
// collapse into one and trailing separators are dropped.
func Normalize(s string) string {
	return Separator + strings.Join(Parse(s), Separator)
}

// GetParent returns the absolute path of the parent of s, or the empty
// string for a root level or empty path.
func GetParent(s string) string {
	segments := Parse(s)
	if len(segments) <= 1 {
		return ""
	}
	return Separator + strings.Join(segments[:len(segments)-1], Separator)
}

// GetName returns the last segment of s.
func GetName(s string) string {
	segments := Parse(s)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// Relative resolves to against from. Absolute targets are returned as is.
func Relative(from, to string) string {
	if IsAbsolute(to) {
		return to
	}
	return Normalize(Join(from, to))
}

// HasPrefix reports whether path lies within the subtree rooted at prefix.
func HasPrefix(path, prefix string) bool {
	if prefix == "" || prefix == Separator {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+Separator)
}

// List returns the paths of every item below root in walk order.
func List(tree Tree, root Item) []string {
	var paths []string
	Walk(tree, root, func(item Item) bool {
		paths = append(paths, GetPath(item))
		return true
	})
	return paths
}
