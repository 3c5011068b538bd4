package formats

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/arthur-debert/congvan/types"
)

var dashRun = regexp.MustCompile("-+")

// Slug turns a Vietnamese title into an ASCII file name fragment:
// diacritics removed, đ folded to d, lowercase, spaces to dashes, only
// alphanumerics, dashes and underscores kept
func Slug(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}
	plain = strings.NewReplacer("đ", "d", "Đ", "D").Replace(plain)

	result := strings.ToLower(plain)
	result = strings.ReplaceAll(result, " ", "-")

	var builder strings.Builder
	for _, r := range result {
		if (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) || r == '-' || r == '_' {
			builder.WriteRune(r)
		}
	}

	result = dashRun.ReplaceAllString(builder.String(), "-")
	result = strings.Trim(result, "-")
	if len(result) > 60 {
		result = strings.TrimRight(result[:60], "-")
	}
	if result == "" {
		return "export"
	}
	return result
}

// Filename names an export file: register label, scope, date and the
// format extension, e.g. "van-ban-den-cho-xu-ly-20240115.xlsx"
func Filename(t types.DocumentType, scope string, format *ExportFormat, now time.Time) string {
	parts := []string{Slug(t.Label())}
	if s := Slug(scope); scope != "" && s != "export" {
		parts = append(parts, s)
	}
	parts = append(parts, now.Format("20060102"))
	return strings.Join(parts, "-") + format.Extension
}

// ScopeLabel returns the Vietnamese name of an export scope
func ScopeLabel(scope string) string {
	switch scope {
	case string(types.Waiting):
		return "Chờ xử lý"
	case string(types.Finished):
		return "Đã xử lý"
	case "search":
		return "Kết quả tìm kiếm"
	}
	return scope
}
