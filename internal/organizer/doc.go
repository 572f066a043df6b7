// Package organizer moves completed rips into the final music library.
//
// It locates the album directory the ripper left under <session>/flac and
// relocates it with collision handling: an existing album of the same name
// is never overwritten, the incoming directory gets a timestamp suffix
// instead. Cross-filesystem moves degrade to copy-and-remove.
package organizer
