// Package printer writes human-facing command output with status icons.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/stager/internal/core/styles"
)

const (
	iconSuccess = "✔"
	iconInfo    = "•"
	iconWarn    = "!"
	iconError   = "✘"
)

// Printer writes styled lines to an output stream. Colors are dropped when
// the stream is not a terminal.
type Printer struct {
	w       io.Writer
	success lipgloss.Style
	info    lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	section lipgloss.Style
}

// New returns a Printer writing to w with the default theme.
func New(w io.Writer) *Printer {
	return NewWithTheme(w, styles.DefaultTheme)
}

// NewWithTheme returns a Printer writing to w with the named theme.
func NewWithTheme(w io.Writer, theme string) *Printer {
	p, ok := styles.GetPalette(theme)
	if !ok {
		p, _ = styles.GetPalette(styles.DefaultTheme)
	}

	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(p.Success),
		info:    r.NewStyle().Foreground(p.Primary),
		warn:    r.NewStyle().Foreground(p.Warning),
		err:     r.NewStyle().Foreground(p.Error).Bold(true),
		section: r.NewStyle().Foreground(p.Primary).Bold(true),
	}
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stdout.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

func (p *Printer) line(icon string, style lipgloss.Style, format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", style.Render(icon), fmt.Sprintf(format, args...))
}

// Successf prints a line with a success icon.
func (p *Printer) Successf(format string, args ...any) {
	p.line(iconSuccess, p.success, format, args...)
}

// Infof prints a line with an info icon.
func (p *Printer) Infof(format string, args ...any) {
	p.line(iconInfo, p.info, format, args...)
}

// Warnf prints a line with a warning icon.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(iconWarn, p.warn, format, args...)
}

// Errorf prints a line with an error icon.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(iconError, p.err, format, args...)
}

// Printf prints a plain line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Section prints a bold heading.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.w, p.section.Render(title))
}

// Writer returns the underlying stream.
func (p *Printer) Writer() io.Writer {
	return p.w
}
