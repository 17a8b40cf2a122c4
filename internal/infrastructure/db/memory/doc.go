// Package memory provides process-local implementations of the repository
// ports. They back STORE_DRIVER=memory and serve as fixtures in tests. All
// repositories are safe for concurrent use and hand out copies, never the
// stored values.
package memory
