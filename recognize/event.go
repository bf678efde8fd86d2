package recognize

import "github.com/kestrelterm/vt48/utf8dfa"

// EventKind discriminates the result of feeding a byte to a Recognizer.
type EventKind uint8

const (
	// EventContinue: the byte was absorbed; no event is ready yet.
	EventContinue EventKind = iota
	// EventChar: a single printable/decoded character is ready.
	EventChar
	// EventControl: a complete control function is ready.
	EventControl
	// EventSyncChar: a resynchronization replacement character, followed
	// immediately by a normal character decoded from the same byte that
	// triggered the resync. Both must be applied, in that order.
	EventSyncChar
	// EventSyncControl: a resynchronization replacement character,
	// followed immediately by a control function completed by the same
	// byte that triggered the resync.
	EventSyncControl
)

// ControlKind discriminates the shape of a Control value.
type ControlKind uint8

const (
	KindC0C1      ControlKind = iota // one-byte C0 control; End holds the byte
	KindEscape                       // ESC <intermediates> <final>
	KindCSI                          // ESC [ <private?> <params> <intermediates> <final>
	KindString                       // OSC/DCS/PM/APC/SOS ... ST (or BEL)
	KindSingleChar                   // ESC Z <byte> (SCI)
)

// Param is one parameter of a control sequence. Default is true when the
// parameter position was left empty (no digits were typed); by ECMA-48
// convention an explicit value of 0 carries the same meaning as Default
// for nearly every control function, so Resolve treats them identically.
type Param struct {
	Default bool
	Value   uint16
}

// Resolve returns the parameter's effective value, substituting def when
// the parameter is Default or explicitly zero.
func (p Param) Resolve(def uint16) uint16 {
	if p.Default || p.Value == 0 {
		return def
	}
	return p.Value
}

// Control describes one complete control function: a C0/C1 control byte,
// an ESC sequence, a CSI sequence, a control string, or a single-character
// introducer sequence. A Control value is owned by the Recognizer that
// produced it and is only valid until the next call to Feed.
type Control struct {
	Kind    ControlKind
	Start   byte // opening byte: '[' for CSI, the opener for KindString, 'Z' for KindSingleChar, 0 otherwise
	Private byte // CSI private marker (one of '?' '<' '=' '>'), 0 if none
	Params  []Param
	Payload []byte
	End     byte
}

// Event is the result of feeding one byte to a Recognizer.
type Event struct {
	Kind    EventKind
	Char    rune
	Control *Control
}

var continueEvent = Event{Kind: EventContinue}

func charEvent(r rune) Event {
	return Event{Kind: EventChar, Char: r}
}

func controlEvent(c *Control) Event {
	return Event{Kind: EventControl, Control: c}
}

func syncCharEvent(r rune) Event {
	return Event{Kind: EventSyncChar, Char: r}
}

func syncControlEvent(c *Control) Event {
	return Event{Kind: EventSyncControl, Control: c}
}

// ReplacementChar is the character a Recognizer always reports first in
// EventSyncChar and EventSyncControl, and the character substituted for
// any byte sequence the UTF-8 decoder rejects outright.
const ReplacementChar = utf8dfa.ReplacementChar
