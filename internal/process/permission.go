package process

import (
	"errors"
	"io/fs"
	"strings"
)

var permissionPhrases = []string{
	"permission denied",
	"operation not permitted",
	"must be superuser",
	"only root can",
	"not authorized",
}

// IsPermissionDenied reports whether err looks like a privilege failure
// rather than a domain failure. Exit codes alone cannot distinguish the
// two for tools like mount and eject, so the retained output is inspected.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	output := strings.ToLower(cmdErr.Output)
	for _, phrase := range permissionPhrases {
		if strings.Contains(output, phrase) {
			return true
		}
	}
	return false
}
