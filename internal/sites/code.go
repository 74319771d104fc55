package sites

import "strings"

var codeReplacer = strings.NewReplacer(" ", "-", "_", "-")

// NormalizeCode trims and upper-cases a site code and turns spaces and
// underscores into hyphens. Stored codes and lookups always use this form.
func NormalizeCode(code string) string {
	return codeReplacer.Replace(strings.ToUpper(strings.TrimSpace(code)))
}
