package ripping

import (
	"fmt"
	"regexp"
	"strconv"
)

var driveIndexPattern = regexp.MustCompile(`\d+`)

// ParseDriveIndex extracts the numeric drive index makemkvcon expects from
// a device path: /dev/sr0 is drive 0, /dev/sr1 drive 1, and so on.
func ParseDriveIndex(devicePath string) (int, error) {
	match := driveIndexPattern.FindString(devicePath)
	if match == "" {
		return 0, fmt.Errorf("no drive index in device path %q", devicePath)
	}
	index, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("drive index in %q: %w", devicePath, err)
	}
	return index, nil
}
