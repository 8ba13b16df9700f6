package remote

import (
	"fmt"
	"regexp"
	"strings"
)

var templateToken = regexp.MustCompile(`%\(([A-Za-z0-9_]+)\)s`)

// EvalTemplate expands the %(field)s subset of yt-dlp output templates
// against an info mapping. Missing fields expand to "NA", matching yt-dlp.
func EvalTemplate(tmpl string, info map[string]any) string {
	return templateToken.ReplaceAllStringFunc(tmpl, func(tok string) string {
		field := templateToken.FindStringSubmatch(tok)[1]
		v, ok := info[field]
		if !ok || v == nil {
			return "NA"
		}
		s := fmt.Sprint(v)
		if strings.TrimSpace(s) == "" {
			return "NA"
		}
		return s
	})
}

// SanitizeFilename strips characters that are unsafe in filenames, the way
// yt-dlp's restricted mode does for the ones that matter across platforms.
func SanitizeFilename(name string) string {
	repl := strings.NewReplacer("/", "_", "\\", "_", ":", " -", "\x00", "")
	return strings.TrimSpace(repl.Replace(name))
}
