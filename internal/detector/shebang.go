package detector

import (
	"bytes"
	"regexp"
	"strings"
)

// versionSuffix strips trailing versions from interpreter names, so
// python2.6.3 resolves like python. The split keeps everything before the
// first N.N group.
var versionSuffix = regexp.MustCompile(`[0-9]\.[0-9]`)

// interpreterFromShebang extracts the interpreter basename from a file's
// first line. The line must start with #! exactly; `env <name>` indirection
// is resolved. Returns "" when no interpreter can be parsed.
func interpreterFromShebang(line []byte) string {
	if !bytes.HasPrefix(line, []byte("#!")) {
		return ""
	}
	text := strings.TrimRight(string(line[2:]), "\r\n")

	lastSegment := text
	if idx := strings.LastIndexByte(text, '/'); idx >= 0 {
		lastSegment = text[idx+1:]
	}

	fields := strings.Fields(lastSegment)
	if len(fields) == 0 {
		return ""
	}
	interpreter := fields[0]
	if interpreter == "env" {
		if len(fields) < 2 {
			return ""
		}
		interpreter = fields[1]
	}

	if loc := versionSuffix.FindStringIndex(interpreter); loc != nil {
		interpreter = interpreter[:loc[0]]
	}
	return interpreter
}
