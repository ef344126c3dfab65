package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// printer writes user-facing messages. Colors follow color.NoColor.
type printer struct {
	w       io.Writer
	success *color.Color
	warn    *color.Color
	fail    *color.Color
	faint   *color.Color
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:       w,
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		faint:   color.New(color.Faint),
	}
}

func (p *printer) Info(format string, a ...any) {
	fmt.Fprintf(p.w, format+"\n", a...)
}

func (p *printer) Success(format string, a ...any) {
	p.success.Fprintf(p.w, format+"\n", a...)
}

func (p *printer) Warn(format string, a ...any) {
	p.warn.Fprintf(p.w, format+"\n", a...)
}

func (p *printer) Fail(format string, a ...any) {
	p.fail.Fprintf(p.w, format+"\n", a...)
}

// shortSHA abbreviates a commit hash for display.
func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
