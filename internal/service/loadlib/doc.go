// Package loadlib implements the load command: it runs the full
// extract-verify-load pipeline for one or more bundled libraries, prints where
// each one was loaded from and removes the scratch files before returning.
//
// It is meant as a deployment smoke test: a library that loads here will load
// in the host application built from the same bundle.
package loadlib
