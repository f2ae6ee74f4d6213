package images

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// ObjectPrefix is the folder every restaurant photo is stored under.
	ObjectPrefix = "restaurants"

	// ObjectExt is the extension of every stored photo.
	ObjectExt = ".webp"

	maxBaseNameRunes = 64
	fallbackBaseName = "photo"
)

// BaseName returns the part of an uploaded file name before its first dot.
// Any client directory is dropped, control characters are removed and the
// result is NFC-normalized; everything else, Thai and spaces included, is kept.
//
//	"ราเมน.jpg"         -> "ราเมน"
//	"IMG_0042.HEIC.jpg" -> "IMG_0042"
//	".hidden"           -> "photo"
func BaseName(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	base, _, _ := strings.Cut(filename, ".")

	base = strings.ToValidUTF8(base, "")
	base = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, base)
	base = strings.TrimSpace(norm.NFC.String(base))

	if runes := []rune(base); len(runes) > maxBaseNameRunes {
		base = strings.TrimSpace(string(runes[:maxBaseNameRunes]))
	}
	if base == "" {
		return fallbackBaseName
	}
	return base
}

// ObjectName builds "restaurants/{millis}-{basename}.webp" for an uploaded file.
func ObjectName(at time.Time, filename string) string {
	return fmt.Sprintf("%s/%d-%s%s", ObjectPrefix, at.UnixMilli(), BaseName(filename), ObjectExt)
}
