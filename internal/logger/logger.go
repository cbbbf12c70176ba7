// Package logger prints tagged, timestamped console lines.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
)

var (
	mu       sync.Mutex
	toStderr bool
)

// UseStderr sends all further output to stderr, for processes whose stdout
// carries a protocol stream.
func UseStderr() {
	mu.Lock()
	defer mu.Unlock()
	toStderr = true
}

func output() *os.File {
	if toStderr {
		return os.Stderr
	}
	return os.Stdout
}

// colorEnabled reports whether the output is a terminal. NO_COLOR disables colours.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := output().Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(color, s string) string {
	if !colorEnabled() {
		return s
	}
	return color + s + reset
}

func line(color, tag, msg string) {
	mu.Lock()
	defer mu.Unlock()
	ts := paint(dim, time.Now().Format("15:04:05"))
	fmt.Fprintf(output(), "%s %s %s\n", ts, paint(color, "["+tag+"]"), msg)
}

// Info logs a neutral message.
func Info(tag, msg string) { line(blue, tag, msg) }

// Success logs a completed step.
func Success(tag, msg string) { line(green, tag, msg) }

// Warn logs a recoverable problem.
func Warn(tag, msg string) { line(yellow, tag, msg) }

// Error logs a failure.
func Error(tag, msg string) { line(red, tag, msg) }

// Banner prints the start-up banner.
func Banner(version string) {
	mu.Lock()
	defer mu.Unlock()
	title := "Timeless Jewel Mapper"
	if version != "" {
		title += " " + version
	}
	rule := strings.Repeat("=", len(title)+4)
	fmt.Fprintln(output(), paint(cyan, rule))
	fmt.Fprintln(output(), paint(bold+cyan, "  "+title))
	fmt.Fprintln(output(), paint(cyan, rule))
}

// Section prints a section heading.
func Section(title string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output(), "\n%s\n", paint(bold, "--- "+title+" ---"))
}

// Stats prints an aligned key/value line. Integers get thousands separators.
func Stats(key string, value any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output(), "  %-22s %s\n", key+":", formatValue(value))
}

// Server logs the listening address.
func Server(addr string) {
	line(green, "HTTP", "Listening on "+paint(bold, "http://"+addr))
}

func formatValue(v any) string {
	switch n := v.(type) {
	case int:
		return humanize.Comma(int64(n))
	case int64:
		return humanize.Comma(n)
	case uint32:
		return humanize.Comma(int64(n))
	case float64:
		return humanize.CommafWithDigits(n, 2)
	default:
		return fmt.Sprint(v)
	}
}
