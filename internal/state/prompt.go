package state

import (
	"unicode"
)

// Prompt is a one-line text input shown in the status line. OnSubmit runs
// on Enter with the entered text.
type Prompt struct {
	Label    string
	Buffer   []rune
	Cursor   int
	OnSubmit func(s *AppState, text string) error
}

// Text returns the current input.
func (p *Prompt) Text() string { return string(p.Buffer) }

// OpenPrompt starts a prompt prefilled with initial.
func (s *AppState) OpenPrompt(label, initial string, onSubmit func(s *AppState, text string) error) {
	buf := []rune(initial)
	s.Prompt = &Prompt{Label: label, Buffer: buf, Cursor: len(buf), OnSubmit: onSubmit}
}

func (p *Prompt) insert(ch rune) {
	p.Buffer = append(p.Buffer, 0)
	copy(p.Buffer[p.Cursor+1:], p.Buffer[p.Cursor:])
	p.Buffer[p.Cursor] = ch
	p.Cursor++
}

func (p *Prompt) backspace() {
	if p.Cursor == 0 {
		return
	}
	p.Buffer = append(p.Buffer[:p.Cursor-1], p.Buffer[p.Cursor:]...)
	p.Cursor--
}

func (p *Prompt) deleteForward() {
	if p.Cursor >= len(p.Buffer) {
		return
	}
	p.Buffer = append(p.Buffer[:p.Cursor], p.Buffer[p.Cursor+1:]...)
}

// deleteWord removes the word before the cursor along with any spaces
// between it and the cursor.
func (p *Prompt) deleteWord() {
	i := p.Cursor
	for i > 0 && unicode.IsSpace(p.Buffer[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(p.Buffer[i-1]) {
		i--
	}
	p.Buffer = append(p.Buffer[:i], p.Buffer[p.Cursor:]...)
	p.Cursor = i
}

func (p *Prompt) move(direction string) {
	switch direction {
	case "left":
		if p.Cursor > 0 {
			p.Cursor--
		}
	case "right":
		if p.Cursor < len(p.Buffer) {
			p.Cursor++
		}
	case "home":
		p.Cursor = 0
	case "end":
		p.Cursor = len(p.Buffer)
	}
}
