// Package logger prints the tool's progress lines. On a terminal the lines
// carry emoji prefixes; redirected output gets plain level prefixes.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr

	emoji = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
)

func prefix(tty, plain string) string {
	if emoji {
		return tty
	}
	return plain
}

// Startf announces the beginning of a run.
func Startf(format string, v ...any) {
	fmt.Fprintf(out, prefix("🚀 ", "INFO: ")+format+"\n", v...)
}

func Infof(format string, v ...any) {
	fmt.Fprintf(out, prefix("📋 ", "INFO: ")+format+"\n", v...)
}

// Stepf reports progress on the current item.
func Stepf(format string, v ...any) {
	fmt.Fprintf(out, prefix("⏳ ", "INFO: ")+format+"\n", v...)
}

func Successf(format string, v ...any) {
	fmt.Fprintf(out, prefix("✅ ", "INFO: ")+format+"\n", v...)
}

func Warnf(format string, v ...any) {
	fmt.Fprintf(out, prefix("⚠️  ", "WARN: ")+format+"\n", v...)
}

func Errorf(format string, v ...any) {
	fmt.Fprintf(errOut, prefix("❌ ", "ERROR: ")+format+"\n", v...)
}
