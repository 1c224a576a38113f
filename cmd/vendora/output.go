package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2dd4bf")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printTableHeader(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), value)
}

// printPageFooter prints "page 2/3 · 23 total" under a list.
func printPageFooter[T any](w io.Writer, p *domain.PagedResult[T]) {
	page := max(p.Page, 1)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("page %d/%d · %d total", page, p.Pages(), p.Total)))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string([]rune(s)[:n-1]) + "…"
}

// money renders an amount as $1,234.50.
func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orderRef(o domain.Order) string {
	if o.OrderNumber != "" {
		return "#" + o.OrderNumber
	}
	return o.ID
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// displayError shows the operator-facing message of an API failure.
type displayError struct {
	msg string
	err error
}

func (e *displayError) Error() string { return e.msg }
func (e *displayError) Unwrap() error { return e.err }

func friendly(err error) error {
	if _, ok := client.AsAPIError(err); !ok {
		return err
	}
	return &displayError{msg: client.Message(err), err: err}
}
