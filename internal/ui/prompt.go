package ui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// Choice is a selectable option.
type Choice struct {
	ID    string
	Label string
}

// ChoiceGroup is a titled set of choices offered together.
type ChoiceGroup struct {
	Title       string
	Description string
	Choices     []Choice
}

func options(choices []Choice, selected map[string]bool) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		label := c.Label
		if label == "" {
			label = c.ID
		}
		opts = append(opts, huh.NewOption(label, c.ID).Selected(selected[c.ID]))
	}
	return opts
}

// SelectEditors prompts for one or more editors.
func SelectEditors(choices []Choice) ([]string, error) {
	var selected []string
	err := huh.NewMultiSelect[string]().
		Title("Which editors/tools do you use?").
		Description("Space to toggle, enter to confirm").
		Options(options(choices, nil)...).
		Validate(func(s []string) error {
			if len(s) == 0 {
				return errors.New("select at least one editor")
			}
			return nil
		}).
		Value(&selected).
		Run()
	return selected, err
}

// SelectFramework prompts for a single framework. preselected is focused
// first when it is one of the choices.
func SelectFramework(choices []Choice, preselected string) (string, error) {
	selected := preselected
	err := huh.NewSelect[string]().
		Title("Which framework/stack are you using?").
		Options(options(choices, nil)...).
		Value(&selected).
		Run()
	return selected, err
}

// SelectAdditionalAgents prompts for optional agents, one group per category.
// Empty groups are skipped.
func SelectAdditionalAgents(groups []ChoiceGroup) ([]string, error) {
	var all []string
	for _, g := range groups {
		if len(g.Choices) == 0 {
			continue
		}
		var selected []string
		err := huh.NewMultiSelect[string]().
			Title(g.Title).
			Description(g.Description).
			Options(options(g.Choices, nil)...).
			Value(&selected).
			Run()
		if err != nil {
			return nil, err
		}
		all = append(all, selected...)
	}
	return all, nil
}

// SelectSkills prompts for Claude skills.
func SelectSkills(choices []Choice) ([]string, error) {
	if len(choices) == 0 {
		return nil, nil
	}
	var selected []string
	err := huh.NewMultiSelect[string]().
		Title("Which Claude skills do you want to install?").
		Options(options(choices, nil)...).
		Value(&selected).
		Run()
	return selected, err
}

// Confirm prompts the user for a yes/no confirmation.
func Confirm(title string) (bool, error) {
	confirmed := true
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	return confirmed, err
}

// IsAbort reports whether err is the user cancelling a prompt.
func IsAbort(err error) bool {
	return errors.Is(err, huh.ErrUserAborted)
}
