package ui

import (
	"github.com/charmbracelet/huh/spinner"
)

// WithSpinner runs a function with a spinner. Without a terminal it runs the
// function directly.
func WithSpinner(title string, fn func() error) error {
	if !IsInteractive() {
		return fn()
	}
	var actionErr error
	err := spinner.New().
		Title(title).
		Action(func() {
			actionErr = fn()
		}).
		Run()
	if err != nil {
		return err
	}
	return actionErr
}
