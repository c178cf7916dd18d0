package staging

import "path/filepath"

// Layout maps disc identities to paths in the work-in-progress and output
// trees. Presence of an identity under the output tree is the
// authoritative "already ripped" marker.
type Layout struct {
	WIPRoot string
	OutRoot string
}

// NewLayout builds a layout rooted at the configured trees.
func NewLayout(wipRoot, outRoot string) Layout {
	return Layout{WIPRoot: wipRoot, OutRoot: outRoot}
}

// DVD paths. A DVD moves dvd_rip -> dvd (staged) -> dvd_transcode -> out.

func (l Layout) DVDRipDir(identity string) string {
	return filepath.Join(l.WIPRoot, "dvd_rip", identity)
}

func (l Layout) DVDStagedRoot() string {
	return filepath.Join(l.WIPRoot, "dvd")
}

func (l Layout) DVDStagedDir(identity string) string {
	return filepath.Join(l.DVDStagedRoot(), identity)
}

func (l Layout) DVDTranscodeDir(identity string) string {
	return filepath.Join(l.WIPRoot, "dvd_transcode", identity)
}

func (l Layout) DVDOutDir(identity string) string {
	return filepath.Join(l.OutRoot, "dvd", identity)
}

// Redbook paths. The extraction tool names the album directory itself, so
// the output name carries both the album and the TOC fingerprint.

func (l Layout) RedbookWIPDir() string {
	return filepath.Join(l.WIPRoot, "redbook")
}

func (l Layout) RedbookOutRoot() string {
	return filepath.Join(l.OutRoot, "redbook")
}

func (l Layout) RedbookOutDir(album, fingerprint string) string {
	return filepath.Join(l.RedbookOutRoot(), album+"-"+fingerprint)
}

// Data disc paths: a single raw image per identity.

func (l Layout) ISOWIPPath(identity string) string {
	return filepath.Join(l.WIPRoot, "iso", identity+".iso")
}

func (l Layout) ISOOutPath(identity string) string {
	return filepath.Join(l.OutRoot, "iso", identity+".iso")
}
