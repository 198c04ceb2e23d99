// Package extractor copies a bundled native library into the scratch
// directory and proves the copy is byte-identical to the bundle.
//
// Every extraction writes to a fresh "<prefix>-<uuid><ext>" file so that
// concurrent extractions, in this process or in other processes sharing the
// temp directory, never touch the same path. There is no locking.
package extractor
