package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Logger provides leveled diagnostics on stderr, keeping stdout clean
// for the machine-readable dumps. On a terminal it can additionally
// drive a progress bar; piped output degrades to plain text.
type Logger struct {
	verbosity   VerbosityLevel
	writer      io.Writer
	startTime   time.Time
	isTTY       bool
	progressBar *progressbar.ProgressBar
}

// NewLogger creates a logger with the specified verbosity.
func NewLogger(verbosity VerbosityLevel) *Logger {
	return NewLoggerWithWriter(verbosity, os.Stderr)
}

// NewLoggerWithWriter creates a logger with a custom writer, primarily
// for testing.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	return &Logger{
		verbosity: verbosity,
		writer:    w,
		startTime: time.Now(),
		isTTY:     IsTTY(w),
	}
}

// Progress logs pipeline progress like "building CFG for @main" (shown
// in verbose and debug modes).
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs diagnostics with an elapsed-time prefix (debug mode only).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		elapsed := time.Since(l.startTime)
		fmt.Fprintf(l.writer, "[%s] %s\n", formatDuration(elapsed), fmt.Sprintf(format, args...))
	}
}

// Warning logs warnings (always shown).
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// Error logs errors (always shown).
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Error: %s\n", fmt.Sprintf(format, args...))
}

// IsVerbose returns true if verbose or debug mode is enabled.
func (l *Logger) IsVerbose() bool {
	return l.verbosity >= VerbosityVerbose
}

// IsTTY returns true if the logger's output is connected to a terminal.
func (l *Logger) IsTTY() bool {
	return l.isTTY
}

// StartProgress displays a determinate progress bar over total items
// when the output is a terminal. Piped output falls back to a plain
// Progress line instead, so nothing control-coded lands in a log file.
func (l *Logger) StartProgress(description string, total int) {
	if !l.isTTY {
		l.Progress("%s...", description)
		return
	}
	l.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(l.writer),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintf(l.writer, "\n")
		}),
	)
}

// StepProgress advances the bar by one item, relabeling it with the
// item being worked on. Without an active bar it is a no-op.
func (l *Logger) StepProgress(description string) {
	if l.progressBar == nil {
		return
	}
	l.progressBar.Describe(description)
	_ = l.progressBar.Add(1)
}

// FinishProgress completes and clears the progress bar.
func (l *Logger) FinishProgress() {
	if l.progressBar == nil {
		return
	}
	_ = l.progressBar.Finish()
	l.progressBar = nil
}

// formatDuration formats duration as MM:SS.mmm.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}
