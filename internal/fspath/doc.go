// Package fspath provides a normalized, case-insensitive path identity type.
//
// A Path wraps a file or directory name that has been canonicalized once at
// construction: backslashes become forward slashes, duplicate separators
// collapse, "." segments disappear and ".." segments resolve against the
// segment before them. The original letter case is preserved in the string,
// but equality, ordering and hashing ignore case, so two paths that name the
// same file on a case-insensitive file system are the same Path.
//
// # Comparing paths
//
// Path values cannot be compared with ==. Comparing the underlying strings
// would silently become case-sensitive, so the type is made non-comparable
// and offers explicit operations instead:
//
//	a := fspath.MustNew(`C:\Projects\App\main.cs`)
//	b := fspath.MustNew("c:/projects/app/./MAIN.cs")
//	a.Equal(b) // true
//
//	seen := fspath.NewSet()
//	seen.Add(a)
//	seen.Contains(b) // true
//
// Use Key to index ordinary maps.
//
// # Absent paths
//
// New rejects the empty string with ErrInvalidArgument. Create treats the
// empty string as "no path" and returns the zero Path, which reports
// IsZero() == true.
package fspath
