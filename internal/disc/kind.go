package disc

// Kind enumerates the media types the pipeline understands.
type Kind int

const (
	KindRedbook Kind = iota
	KindDVD
	KindDataDisc
	KindBluRay
)

// String returns the directory-name label for the kind.
func (k Kind) String() string {
	switch k {
	case KindRedbook:
		return "redbook"
	case KindDVD:
		return "dvd"
	case KindDataDisc:
		return "iso"
	case KindBluRay:
		return "bluray"
	default:
		return "unknown"
	}
}

// Disc describes a classified medium. Identity is stable across
// re-insertions of the same physical disc so idempotency checks hold.
type Disc struct {
	Kind     Kind
	Identity string
	// Label and UUID are populated from block-device metadata for DVD
	// and data discs; empty for Redbook.
	Label string
	UUID  string
	// TrackLengths holds the audio TOC lengths for Redbook discs.
	TrackLengths []int
}
