package ui

import tea "github.com/charmbracelet/bubbletea"

// keyToBytes converts a key message to bytes for PTY input.
func keyToBytes(msg tea.KeyMsg) []byte {
	if msg.Type == tea.KeyRunes {
		payload := []byte(string(msg.Runes))
		if msg.Alt && len(payload) > 0 {
			return append([]byte{27}, payload...)
		}
		return payload
	}

	switch msg.Type {
	case tea.KeyUp:
		return []byte("\x1b[A")
	case tea.KeyDown:
		return []byte("\x1b[B")
	case tea.KeyRight:
		return []byte("\x1b[C")
	case tea.KeyLeft:
		return []byte("\x1b[D")
	case tea.KeyHome:
		return []byte("\x1b[H")
	case tea.KeyEnd:
		return []byte("\x1b[F")
	case tea.KeyDelete:
		return []byte("\x1b[3~")
	}

	var base []byte
	switch msg.Type {
	case tea.KeyEnter:
		base = []byte{'\r'}
	case tea.KeySpace:
		base = []byte{' '}
	case tea.KeyTab:
		base = []byte{'\t'}
	case tea.KeyBackspace:
		base = []byte{127}
	case tea.KeyEscape:
		base = []byte{27}
	default:
		if msg.Type >= tea.KeyCtrlAt && msg.Type <= tea.KeyCtrlZ {
			base = []byte{byte(msg.Type)}
		}
	}

	if len(base) == 0 {
		return nil
	}
	if msg.Alt {
		return append([]byte{27}, base...)
	}
	return base
}
