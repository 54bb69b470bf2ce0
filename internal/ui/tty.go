package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsCI returns true if running in a CI environment.
func IsCI() bool {
	return isTruthy(os.Getenv("CI")) ||
		isTruthy(os.Getenv("AGENT_LIBRARY_CI")) ||
		isTruthy(os.Getenv("GITHUB_ACTIONS")) ||
		isTruthy(os.Getenv("GITLAB_CI"))
}

func isTruthy(v string) bool {
	return v != "" && v != "false" && v != "0"
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsInteractive reports whether prompts can be shown: stdin and stdout are
// terminals and no CI environment is detected.
func IsInteractive() bool {
	return !IsCI() && isTerminal(os.Stdin) && isTerminal(os.Stdout)
}
