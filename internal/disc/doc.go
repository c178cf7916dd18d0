// Package disc classifies the medium in the optical drive and derives a
// stable identity for it. Probe order is fixed: the non-destructive audio
// TOC probe first, then block-device metadata, then no-disc.
package disc
