// Package formats provides parsers for the text formats a mesh import reads:
// Wavefront OBJ face references, MTL material libraries and plain (P3) PPM images.
package formats

import "strings"

// DirOf returns the directory part of path including the trailing slash.
// References inside a description file are resolved against it, not against
// the working directory. A path without any '/' resolves to "./".
func DirOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "./"
	}
	return path[:i+1]
}

// Resolve joins a reference found inside the file at path onto that file's directory.
func Resolve(path, ref string) string {
	return DirOf(path) + ref
}
