// Package naming derives output paths from input paths and answers whether
// an output already exists.
//
// The mapping is purely lexical: the final extension of the input is
// replaced, directory and base name are preserved. An existing entry at the
// output path means the input was already converted and must be skipped,
// which is what makes re-running a batch over the same tree safe.
package naming
