package report

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
)

// Filename returns отчет_{group}_{date}.xlsx with whitespace and path
// separators in group and date replaced by underscores.
func Filename(group, date string) string {
	return fmt.Sprintf("отчет_%s_%s.xlsx", sanitize(group), sanitize(date))
}

func sanitize(s string) string {
	if s == "" {
		s = entities.UnknownValue
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, s)
}
