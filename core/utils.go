package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStringPtr is CleanString for optional payload fields; nil stays nil.
func CleanStringPtr(s *string, lower ...bool) *string {
	if s == nil {
		return nil
	}
	cs := CleanString(*s, lower...)
	return &cs
}

// Slugify turns `s` into a lowercase username candidate made of ASCII letters, digits and
// underscores. Accents are folded ("Énergie" gives "energie"); other non-ASCII runes act as separators.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// a transform chain keeps state, so it is built per call
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}

	var b strings.Builder
	lastUnder := false
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
			lastUnder = false
		} else if !lastUnder {
			b.WriteRune('_')
			lastUnder = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// Getwd tries to find the project root, i.e. the closest parent directory holding a go.mod.
// go test changes the working directory to the package being tested, hence the walk up.
// Falls back to the current directory when no go.mod is found (e.g. in a deployed binary).
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
