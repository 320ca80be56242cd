package reporting

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// The amount column is 12 wide so a formatted five-digit amount
// ("$99,999 MXN") fits without an ellipsis.
var (
	tableHeaders = []string{"Fecha", "Evento", "Monto", "Contexto", "Emoción", "Zona", "Tend."}
	tableWidths  = []int{10, 24, 12, 18, 12, 4, 5}
)

// RenderTable writes the rows as a fixed-width table. Long cells are cut
// with an ellipsis so a row never wraps.
func RenderTable(w io.Writer, rows []Row) error {
	header := make([]string, len(tableHeaders))
	sep := make([]string, len(tableWidths))
	for i, h := range tableHeaders {
		header[i] = pad(h, tableWidths[i])
		sep[i] = strings.Repeat("-", tableWidths[i])
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n", strings.Join(header, " | "), strings.Join(sep, "-+-")); err != nil {
		return err
	}

	for _, r := range rows {
		cells := []string{
			r.Date,
			r.Event,
			FormatAmount(r.Amount),
			r.Context,
			r.Emotion,
			r.Zone.Symbol(),
			r.Trend.Symbol(),
		}
		for i := range cells {
			cells[i] = cut(cells[i], tableWidths[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func cut(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return pad(s, width)
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// FormatAmount renders a numeric amount as whole pesos with thousands
// separators ("$12,500 MXN"). Non-numeric input is returned trimmed.
func FormatAmount(raw string) string {
	s := strings.TrimSpace(raw)
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.ToLower(s))
	clean = strings.TrimSuffix(clean, "mxn")
	if clean == "" {
		return s
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return s
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("$%d MXN", d.Round(0).IntPart())
}
