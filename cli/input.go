package cli

import (
	"bytes"
	"os"
)

// InputHandler copies the host terminal's raw-mode stdin to the
// pseudoterminal, intercepting a small set of scrollback-navigation
// sequences along the way.
type InputHandler struct {
	term *Terminal
}

// NewInputHandler creates an input handler bound to term.
func NewInputHandler(term *Terminal) *InputHandler {
	return &InputHandler{term: term}
}

// scrollKey is one raw byte sequence recognized as a scrollback command
// before it ever reaches the pseudoterminal.
type scrollKey struct {
	seq    []byte
	action func(*Terminal)
}

// scrollKeys are modified cursor-motion sequences a host terminal sends
// for Shift+PageUp/PageDown/Up/Down/Home/End. xterm emits these as CSI
// sequences with a ";2" (Shift) modifier parameter.
var scrollKeys = []scrollKey{
	{[]byte("\x1b[5;2~"), func(t *Terminal) { t.ScrollUp(t.options.Rows) }},   // Shift+PageUp
	{[]byte("\x1b[6;2~"), func(t *Terminal) { t.ScrollDown(t.options.Rows) }}, // Shift+PageDown
	{[]byte("\x1b[1;2A"), func(t *Terminal) { t.ScrollUp(1) }},                // Shift+Up
	{[]byte("\x1b[1;2B"), func(t *Terminal) { t.ScrollDown(1) }},              // Shift+Down
	{[]byte("\x1b[1;2H"), func(t *Terminal) { t.ScrollToTop() }},              // Shift+Home
	{[]byte("\x1b[1;2F"), func(t *Terminal) { t.ScrollToBottom() }},           // Shift+End
}

// InputLoop reads raw bytes from stdin until the terminal stops.
func (h *InputHandler) InputLoop() {
	buf := make([]byte, 4096)
	for {
		select {
		case <-h.term.stopRender:
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if n > 0 {
			h.processInput(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// processInput handles one chunk of raw input: scrollback sequences are
// consumed locally, everything else goes to the input callback (if any)
// and then the pseudoterminal, snapping the view back to the bottom.
func (h *InputHandler) processInput(data []byte) {
	if key := matchScrollKey(data); key != nil {
		key.action(h.term)
		return
	}

	t := h.term
	t.mu.Lock()
	callback := t.inputCallback
	t.mu.Unlock()

	if callback != nil && callback(data) {
		return
	}

	if t.GetScrollOffset() != 0 {
		t.ScrollToBottom()
	}
	t.Write(data)
}

func matchScrollKey(data []byte) *scrollKey {
	for i := range scrollKeys {
		if bytes.Equal(data, scrollKeys[i].seq) {
			return &scrollKeys[i]
		}
	}
	return nil
}
