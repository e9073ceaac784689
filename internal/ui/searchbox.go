package ui

import "strings"

const SearchPlaceholder = "Enter City Name..."

// SearchBox is a text field plus a submit control. The value belongs to the
// caller; the box only reports edits and submit intent through its callbacks.
type SearchBox struct {
	Value       string
	Placeholder string
	OnChange    func(value string)
	OnSubmit    func()
}

func NewSearchBox(value string, onChange func(string), onSubmit func()) SearchBox {
	return SearchBox{
		Value:       value,
		Placeholder: SearchPlaceholder,
		OnChange:    onChange,
		OnSubmit:    onSubmit,
	}
}

// Input reports the field's new full value.
func (b SearchBox) Input(value string) {
	if b.OnChange != nil {
		b.OnChange(value)
	}
}

// Key submits on Enter and ignores every other key.
func (b SearchBox) Key(name string) {
	if strings.EqualFold(name, "enter") {
		b.submit()
	}
}

// Click is the submit button.
func (b SearchBox) Click() {
	b.submit()
}

func (b SearchBox) submit() {
	if b.OnSubmit != nil {
		b.OnSubmit()
	}
}

// Line renders the box for a terminal, showing the placeholder when empty.
func (b SearchBox) Line(focused bool) string {
	text := b.Value
	if text == "" && !focused {
		text = b.Placeholder
	}
	cursor := ""
	if focused {
		cursor = "█"
	}
	return "[ " + text + cursor + " ]  (enter) search"
}
