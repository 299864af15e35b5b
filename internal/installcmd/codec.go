// Package installcmd encodes and decodes IDE installPlugins commands.
package installcmd

import (
	"regexp"
	"strings"
)

// Verb is the IDE subcommand that installs plugins by xmlId.
const Verb = "installPlugins"

var verbPattern = regexp.MustCompile(`(?i)\binstallPlugins\b`)

// Encode builds the shell command that asks the IDE at exePath to
// install the given plugin ids. The path and each id are independently
// wrapped in double quotes when they contain a space. Identifiers
// containing a literal double quote are outside the contract and are
// not escaped.
func Encode(exePath string, xmlIDs []string) string {
	parts := make([]string, 0, len(xmlIDs)+2)
	parts = append(parts, quoteIfNeeded(exePath), Verb)
	for _, id := range xmlIDs {
		parts = append(parts, quoteIfNeeded(id))
	}
	return strings.Join(parts, " ")
}

// Decode extracts the plugin ids from a command produced by Encode or
// pasted by hand. The verb is matched case-insensitively; everything
// after it splits on spaces, with double quotes toggling a
// take-literally state so quoted ids keep their spaces. A string
// without the verb decodes to nothing.
func Decode(command string) []string {
	loc := verbPattern.FindStringIndex(command)
	if loc == nil {
		return nil
	}
	return splitQuoted(command[loc[1]:])
}

func quoteIfNeeded(s string) string {
	if strings.Contains(s, " ") {
		return `"` + s + `"`
	}
	return s
}

// splitQuoted splits on spaces outside double quotes. The quotes
// themselves never reach the output.
func splitQuoted(s string) []string {
	var (
		ids      []string
		current  strings.Builder
		inQuotes bool
	)

	flush := func() {
		if current.Len() > 0 {
			ids = append(ids, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return ids
}
