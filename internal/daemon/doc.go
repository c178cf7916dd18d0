// Package daemon runs the two pipeline loops. The rip loop and the
// transcode loop are independently scheduled tickers sharing no mutable
// memory; they coordinate only through the staging directory tree. A udev
// netlink monitor nudges the rip loop ahead of its ticker when a disc is
// inserted.
package daemon
