package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrInvalidFileName means nothing usable was left of the name.
var ErrInvalidFileName = errors.New("invalid file name")

const maxFileNameLength = 120

// SafeFileName reduces a download name to one path element made of letters, digits, '.',
// '-' and '_'. Other runs of characters become a single '-'. Leading dots are dropped so
// the result is never hidden or a parent reference. Long names keep their extension.
func SafeFileName(name string) (string, error) {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(name) {
		if isFileNameRune(r) {
			b.WriteRune(r)
			dash = r == '-'
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}

	s := strings.ReplaceAll(b.String(), "-.", ".")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	s = strings.Trim(s, ".-")
	if s == "" {
		return "", ErrInvalidFileName
	}

	if len(s) > maxFileNameLength {
		ext := filepath.Ext(s)
		if len(ext) > 10 {
			ext = ""
		}
		s = strings.TrimRight(s[:maxFileNameLength-len(ext)], ".-") + ext
	}
	return s, nil
}

func isFileNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '_':
		return true
	}
	return false
}
