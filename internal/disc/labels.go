package disc

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// DisplayTitle renders a volume label for human consumption in logs and
// status output. Identities are never derived from this; they keep the
// label verbatim.
func DisplayTitle(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "(unlabeled)"
	}
	cleaned := strings.NewReplacer("_", " ", ".", " ").Replace(label)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return titleCaser.String(strings.ToLower(cleaned))
}
