package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const maxFilenameRunes = 200

var (
	// Characters invalid in filenames on at least one common filesystem
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	controlChars         = regexp.MustCompile(`[\r\n\t\x00-\x1f]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a book title into a file name that is safe on
// Windows, macOS and Linux and does not break wiki links in markdown vaults.
// Invalid characters become underscores so distinct titles stay distinct.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "_")
	filename = controlChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")

	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")
	filename = strings.TrimSpace(filename)

	// Leading dots hide the file on unix
	filename = strings.TrimLeft(filename, ".")

	if runes := []rune(filename); len(runes) > maxFilenameRunes {
		filename = strings.TrimSpace(string(runes[:maxFilenameRunes]))
	}

	if strings.Trim(filename, "_ ") == "" {
		filename = "Untitled"
	}
	return filename
}

// UniqueFilename returns name, or name with a numeric suffix before the
// extension when it was already handed out. seen is updated in place and
// compared case-insensitively.
func UniqueFilename(name string, seen map[string]int) string {
	key := strings.ToLower(name)
	count := seen[key]
	seen[key] = count + 1
	if count == 0 {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for {
		count++
		candidate := fmt.Sprintf("%s (%d)%s", base, count, ext)
		ckey := strings.ToLower(candidate)
		if seen[ckey] == 0 {
			seen[ckey] = 1
			seen[key] = count
			return candidate
		}
	}
}
