package disc

import (
	"bufio"
	"regexp"
	"strings"
)

// blkid value pairs look like A="B" C="D"; values can contain spaces but
// are always quoted.
var blkidPairPattern = regexp.MustCompile(`(\w+)="([^"]+)"`)

// ParseBlkid parses `blkid <device>` output, mapping each device path to
// its KEY="VALUE" metadata pairs.
func ParseBlkid(output string) map[string]map[string]string {
	result := make(map[string]map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		device, params, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		result[device] = ParseBlkidParams(params)
	}
	return result
}

// ParseBlkidParams parses a single line of KEY="VALUE" pairs.
func ParseBlkidParams(params string) map[string]string {
	pairs := make(map[string]string)
	for _, match := range blkidPairPattern.FindAllStringSubmatch(params, -1) {
		pairs[match[1]] = match[2]
	}
	return pairs
}

// MetadataIdentity builds the "<LABEL>-<UUID>" identity used for DVD and
// data discs.
func MetadataIdentity(params map[string]string) string {
	return params["LABEL"] + "-" + params["UUID"]
}
