// Package filesystem provides the filesystem abstraction metapush reads
// templates and content sources through, and writes output documents to.
//
// The abstraction exists for testability: services and adapters take a
// FileSystemProvider, production code passes the OS implementation, and
// tests pass an in-memory one seeded with fixture documents.
//
// Key interfaces:
//   - FileSystemProvider: open directories, read/write/stat files
//   - Directory: a traversable directory tree
//   - File: an individual file with metadata and content
//
// Implementations:
//   - OSFileSystem: production implementation over the OS filesystem
//   - MemoryFileSystem: in-memory implementation for testing
package filesystem
