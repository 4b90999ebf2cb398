// Package pipeline drives a batch: it classifies the input path, discovers
// .silk files under a directory, converts each one in order, and reports a
// summary.
//
// Per-file failures are logged and counted but never stop the batch.
// Problems with the input path itself (missing, wrong extension on a single
// file, unreadable directory entry, unsupported file type) are fatal and are
// returned to the caller.
package pipeline
