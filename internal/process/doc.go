// Package process executes the external tools the pipeline depends on.
// Output is either captured for parsing (probes) or streamed line-by-line
// into the log sink (long-running rip and transcode commands). The
// Escalator retries privilege-sensitive commands once with sudo.
package process
