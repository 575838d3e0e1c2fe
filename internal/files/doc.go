// Package files provides file-related functionality organized into
// sub-packages.
//
//   - filesystem: Filesystem abstraction interfaces and implementations
//     (OS and in-memory)
//
// The abstraction lets readers, writers, and services run unchanged against
// an in-memory filesystem in tests:
//
//	import "github.com/tnbrown/metapush/internal/files/filesystem"
//
//	fsProvider := filesystem.NewOSFileSystem()
//	data, err := fsProvider.ReadFile("columns.csv")
package files
