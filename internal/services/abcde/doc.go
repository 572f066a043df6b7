// Package abcde wraps invocation of the abcde CD ripper and extraction of
// metadata from its textual output.
//
// The client runs abcde non-interactively with an explicit output directory
// override and captures combined output for logging. ParseLog is a pure
// function over that text so it can be unit tested against literal captured
// strings without any process plumbing.
package abcde
