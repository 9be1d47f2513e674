package workspace

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// GeneratedStemPrefix names uploads whose stem has no usable characters.
const GeneratedStemPrefix = "upload-"

// SanitizeFilename reduces an uploaded filename to a safe base name made of
// ASCII letters, digits, '_', '.' and '-'. Accents are folded to their base
// letter, path separators and whitespace become '_', and leading or trailing
// '.' and '_' are trimmed from the stem.
//
// The extension is cleaned separately and lowercased, so it survives a stem
// that folds to nothing; such a stem is replaced by upload-<8 hex chars>.
// The result is empty only when neither stem nor extension is usable.
func SanitizeFilename(name string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}
	folded = strings.NewReplacer("/", " ", "\\", " ").Replace(folded)

	stem, ext := splitExt(folded)
	stem = cleanStem(stem)
	if stem == "" {
		if ext == "" {
			return ""
		}
		stem = GeneratedStemPrefix + uuid.NewString()[:8]
	}
	return stem + ext
}

// splitExt cuts a trailing ".ext" made only of ASCII letters and digits.
// Anything else after the last dot is left in the stem.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return name, ""
	}
	for _, r := range name[i+1:] {
		if !isAlnum(r) {
			return name, ""
		}
	}
	return name[:i], strings.ToLower(name[i:])
}

func cleanStem(stem string) string {
	var b strings.Builder
	for i, part := range strings.Fields(stem) {
		if i > 0 {
			b.WriteByte('_')
		}
		for _, r := range part {
			if isAlnum(r) || r == '_' || r == '.' || r == '-' {
				b.WriteRune(r)
			}
		}
	}
	return strings.Trim(b.String(), "._")
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
