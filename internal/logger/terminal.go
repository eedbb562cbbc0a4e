package logger

import "os"

// isTerminal reports whether f is attached to an interactive terminal,
// deciding whether the text handler may emit ANSI colors. Character
// devices cover consoles on every platform Go supports, which spares us
// per-OS ioctl shims for what is only a cosmetic decision.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
