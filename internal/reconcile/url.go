package reconcile

import "strings"

// urlRepairs are applied in order; the entity decode must run last so
// that an &#38; assembled out of backslash escapes still collapses to a
// single ampersand.
var urlRepairs = [][2]string{
	{`\_`, "_"},
	{`\&`, "&"},
	{`\#`, "#"},
	{`\%`, "%"},
	{"&#38;", "&"},
}

// RepairURL undoes the escape artifacts DBLP leaves in url fields.
func RepairURL(url string) string {
	for _, r := range urlRepairs {
		url = strings.ReplaceAll(url, r[0], r[1])
	}
	return url
}
