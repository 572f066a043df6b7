// Package main hosts the cdrip CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the one-shot rip pipeline that udev or
// a systemd unit invokes, a long-running netlink watch mode, drive status and
// rip history inspection, and configuration scaffolding. Configuration
// resolution and logger setup happen once per invocation so subcommands stay
// declarative; the heavy lifting lives in the internal packages.
package main
