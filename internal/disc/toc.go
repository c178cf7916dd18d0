package disc

import (
	"encoding/binary"
	"hash/fnv"
	"strconv"
	"strings"
)

// ParseTOC extracts track lengths from a cdparanoia query table. Data rows
// are lines 7 through the second-to-last; each contributes 8 whitespace
// separated fields with the track length at index 1. Malformed rows are
// skipped.
func ParseTOC(output string) []int {
	lines := strings.Split(output, "\n")
	if len(lines) < 9 {
		return nil
	}
	var lengths []int
	for _, line := range lines[6 : len(lines)-2] {
		fields := strings.Fields(line)
		if len(fields) != 8 {
			continue
		}
		length, err := strconv.Atoi(strings.TrimSuffix(fields[1], ","))
		if err != nil {
			continue
		}
		lengths = append(lengths, length)
	}
	return lengths
}

// Fingerprint hashes the ordered track-length tuple into a lowercase hex
// string. This is a content fingerprint, not a globally assigned ID: two
// physically distinct discs with identical track lengths collide, and that
// is an accepted approximation.
func Fingerprint(lengths []int) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, length := range lengths {
		binary.BigEndian.PutUint64(buf[:], uint64(length))
		h.Write(buf[:])
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
