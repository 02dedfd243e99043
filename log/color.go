package log

const reset = "\033[0m"

// color returns the ANSI escape sequence that starts a line of level.
func color(level LogLevel) string {
	switch level {
	case Debug:
		return "\033[34m"
	case Info:
		return "\033[32m"
	case Warn:
		return "\033[33m"
	case Error:
		return "\033[31m"
	case Fatal:
		return "\033[35m"
	default:
		return reset
	}
}

func colorize(level LogLevel, line string) string {
	return color(level) + line + reset
}
