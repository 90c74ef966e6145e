package interaction

import "github.com/charmbracelet/huh"

// HuhPrompter implements Prompter using the huh TUI library.
type HuhPrompter struct{}

func (HuhPrompter) Confirm(title, description string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
