// Package monitor watches udev netlink events for optical media insertions
// and hands matching devices to a caller-supplied handler.
package monitor
