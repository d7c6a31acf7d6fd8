package dblp

import (
	"regexp"
	"strings"
)

// Some exports are HTML pages with <pre> bibtex snippets; anything that
// looks like a tag line is dropped wholesale.
var htmlLineRe = regexp.MustCompile(`(?m)^<.*$`)

// {\i} and friends become {i}; the dotless forms only matter under the
// accent macros handled below.
var bareMacroRe = regexp.MustCompile(`\{\\([a-z])\}`)

// accentTables maps a LaTeX accent macro character to pairs of
// plain-letter/accented-rune replacements. {\'{a}} becomes á.
var accentTables = []struct {
	macro string
	pairs string
}{
	{"'", "aáeéiíoóuúAÁEÉIÍOÓUÚ"},
	{`"`, "aäeëiïoöuüAÄEËIÏOÖUÜ"},
	{"`", "aàeèiìoòuùAÀEÈIÌOÒUÙ"},
}

var escapeReplacer = buildEscapeReplacer()

func buildEscapeReplacer() *strings.Replacer {
	var pairs []string
	for _, tab := range accentTables {
		runes := []rune(tab.pairs)
		for i := 0; i+1 < len(runes); i += 2 {
			pairs = append(pairs,
				"{\\"+tab.macro+"{"+string(runes[i])+"}}", string(runes[i+1]))
		}
	}
	pairs = append(pairs,
		"{'{i}}", "í", // backslash already stripped by earlier passes
		"{\\~{a}}", "ã",
		"{\\~{n}}", "ñ",
		"{\\c{c}}", "ç",
	)
	return strings.NewReplacer(pairs...)
}

// Normalize applies the post-download fixes to a raw DBLP export: strips
// stray HTML, decodes the XML entities DBLP emits, and replaces LaTeX
// diacritical escapes with Unicode. Brace groups that bibtex needs for
// author-name parsing ({-}, { }, plain {x}) are left alone.
func Normalize(text string) string {
	text = htmlLineRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&apos;", "'")
	text = strings.ReplaceAll(text, "&quot;", `"`)
	text = bareMacroRe.ReplaceAllString(text, "{$1}")
	return escapeReplacer.Replace(text)
}

// FixAuthorNames repairs name separator artifacts in an author list that
// has already been through bibtex processing. Calling it earlier would
// break name-part splitting.
func FixAuthorNames(text string) string {
	text = strings.ReplaceAll(text, "{-}", "-")
	text = strings.ReplaceAll(text, "{ }", " ")
	return text
}
