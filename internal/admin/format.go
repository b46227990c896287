package admin

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var vnd = message.NewPrinter(language.Vietnamese)

// FormatVND renders a whole-dong amount with Vietnamese digit grouping,
// e.g. "250.000 ₫".
func FormatVND(amount decimal.Decimal) string {
	return vnd.Sprintf("%d ₫", amount.Round(0).IntPart())
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders a stored timestamp as dd/mm/yyyy, or "-" when it is
// empty or unparseable.
func FormatDate(s string) string {
	if s == "" {
		return "-"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return "-"
}
