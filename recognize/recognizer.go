package recognize

import "github.com/kestrelterm/vt48/utf8dfa"

// Recognizer turns a byte stream into a sequence of Events: printable
// characters, C0/C1 controls, escape sequences, CSI sequences, control
// strings, and single-character introducer sequences. It owns one UTF-8
// Decoder internally and drives the 14-state control-function DFA
// described by stateTable. The zero value is ready to use. A Recognizer
// is not safe for concurrent use.
type Recognizer struct {
	state state
	dec   utf8dfa.Decoder
	ctrl  Control

	paramAccum     uint32
	paramHasDigits bool

	pendingEscInError bool
}

// Reset returns the recognizer to its ground state, discarding any
// sequence in progress.
func (r *Recognizer) Reset() {
	r.state = stGround
	r.dec.Reset()
	r.ctrl.Params = r.ctrl.Params[:0]
	r.ctrl.Payload = r.ctrl.Payload[:0]
	r.paramAccum = 0
	r.paramHasDigits = false
	r.pendingEscInError = false
}

// Feed advances the recognizer by one byte and returns the resulting
// Event. Any *Control returned is borrowed and only valid until the next
// call to Feed.
func (r *Recognizer) Feed(b byte) Event {
	if b >= 0x80 {
		return r.feedHighByte(b)
	}
	if r.state == stGround && r.dec.Pending() {
		// A byte < 0x80 breaks an in-progress UTF-8 sequence just as
		// surely as an unexpected lead byte would; abort the decoder
		// and reprocess this byte fresh, promoting the result exactly
		// as feedHighByte's own Rewind case does.
		r.dec.Reset()
		inner := r.feedLowByte(b)
		switch inner.Kind {
		case EventContinue:
			return charEvent(ReplacementChar)
		case EventChar:
			return syncCharEvent(inner.Char)
		case EventControl:
			return syncControlEvent(inner.Control)
		default:
			panic("recognize: nested resynchronization is impossible from ground")
		}
	}
	return r.feedLowByte(b)
}

// feedHighByte implements the ground-state UTF-8 routing rule: bytes
// >= 0x80 are only ever accepted while at ground, where they are handed
// to the UTF-8 decoder; everywhere else they poison the current
// sequence, per the "byte >= 0x80 handling" rule.
func (r *Recognizer) feedHighByte(b byte) Event {
	if r.state != stGround {
		r.poison()
		return continueEvent
	}

	result, cp := r.dec.Feed(b)
	switch result {
	case utf8dfa.Continue:
		return continueEvent
	case utf8dfa.Done:
		return charEvent(cp)
	case utf8dfa.Error:
		return charEvent(ReplacementChar)
	case utf8dfa.Rewind:
		inner := r.feedHighByte(b)
		switch inner.Kind {
		case EventContinue:
			return charEvent(ReplacementChar)
		case EventChar:
			return syncCharEvent(inner.Char)
		case EventControl:
			return syncControlEvent(inner.Control)
		default:
			panic("recognize: nested resynchronization is impossible from ground")
		}
	default:
		panic("recognize: unreachable utf8dfa result")
	}
}

// poison replaces the current in-progress state with its paired error
// state, absorbing the offending byte silently.
func (r *Recognizer) poison() {
	switch r.state {
	case stEscape, stControlFunction, stSingleCharacter:
		r.state = stControlFunctionError
	case stCommandString, stCommandStringEscape, stCharacterString, stCharacterStringEscape:
		r.state = stControlStringError
		r.pendingEscInError = false
	case stControlSequence, stControlSequenceParameter, stControlSequenceIntermediate:
		r.state = stControlSequenceError
	}
}

// feedLowByte implements the table-driven path for bytes < 0x80.
func (r *Recognizer) feedLowByte(b byte) Event {
	// Legacy xterm-style OSC/DCS termination by a bare bell, predating
	// the ST convention; checked ahead of the table since the table's
	// class partition does not single BEL out from the rest of C0.
	if b == 0x07 && (r.state == stCommandString || r.state == stCharacterString) {
		ev := r.finish(b)
		r.state = stGround
		return ev
	}

	if r.state == stControlStringError {
		return r.feedControlStringError(b)
	}

	e := stateTable[r.state][classify(b)]
	next, act := e.next(), e.act()

	switch act {
	case actContinue:
		r.state = next
		return continueEvent
	case actChar:
		r.state = next
		return charEvent(rune(b))
	case actC01Control:
		ev := r.emitC0C1(b)
		r.state = next
		return ev
	case actStartSequence:
		r.startSequence(b)
		r.state = next
		return continueEvent
	case actFinishSequence:
		ev := r.finish(b)
		r.state = next
		return ev
	case actPushByte:
		r.ctrl.Payload = append(r.ctrl.Payload, b)
		r.state = next
		return continueEvent
	case actPushByteWithEscape:
		r.ctrl.Payload = append(r.ctrl.Payload, 0x1B, b)
		r.state = next
		return continueEvent
	case actSetPrivate:
		r.ctrl.Private = b
		r.state = next
		return continueEvent
	case actAddParamValue:
		if r.addParamDigit(b) {
			r.state = stControlSequenceError
		} else {
			r.state = next
		}
		return continueEvent
	case actPushParam:
		r.commitParam()
		r.state = next
		return continueEvent
	case actPushParamAndByte:
		r.commitParam()
		r.ctrl.Payload = append(r.ctrl.Payload, b)
		r.state = next
		return continueEvent
	case actPushParamAndEndSequence:
		r.commitParam()
		ev := r.finish(b)
		r.state = next
		return ev
	default:
		r.state = next
		return continueEvent
	}
}

// feedControlStringError absorbs bytes until it sees ESC followed
// directly by ST, the only terminator a poisoned control string honors.
func (r *Recognizer) feedControlStringError(b byte) Event {
	if r.pendingEscInError {
		r.pendingEscInError = false
		if classify(b) == clsST {
			r.state = stGround
		}
		return continueEvent
	}
	if classify(b) == clsESC {
		r.pendingEscInError = true
	}
	return continueEvent
}

func (r *Recognizer) startSequence(b byte) {
	r.ctrl.Params = r.ctrl.Params[:0]
	r.ctrl.Payload = r.ctrl.Payload[:0]
	r.ctrl.Private = 0
	r.paramAccum = 0
	r.paramHasDigits = false

	switch classify(b) {
	case clsESC:
		r.ctrl.Kind = KindEscape
		r.ctrl.Start = 0
	case clsCSI:
		r.ctrl.Kind = KindCSI
		r.ctrl.Start = b
	case clsCSO, clsSOS:
		r.ctrl.Kind = KindString
		r.ctrl.Start = b
	case clsSCI:
		r.ctrl.Kind = KindSingleChar
		r.ctrl.Start = b
	}
}

func (r *Recognizer) finish(b byte) Event {
	r.ctrl.End = b
	return controlEvent(&r.ctrl)
}

func (r *Recognizer) emitC0C1(b byte) Event {
	r.ctrl.Kind = KindC0C1
	r.ctrl.Start = 0
	r.ctrl.Private = 0
	r.ctrl.Params = r.ctrl.Params[:0]
	r.ctrl.Payload = r.ctrl.Payload[:0]
	r.ctrl.End = b
	return controlEvent(&r.ctrl)
}

// addParamDigit folds one decimal digit into the parameter accumulator
// and reports whether it overflowed the 16-bit range a Param can hold.
func (r *Recognizer) addParamDigit(b byte) (overflowed bool) {
	r.paramHasDigits = true
	r.paramAccum = r.paramAccum*10 + uint32(b-'0')
	return r.paramAccum > 0xFFFF
}

func (r *Recognizer) commitParam() {
	if r.paramHasDigits {
		r.ctrl.Params = append(r.ctrl.Params, Param{Value: uint16(r.paramAccum)})
	} else {
		r.ctrl.Params = append(r.ctrl.Params, Param{Default: true})
	}
	r.paramAccum = 0
	r.paramHasDigits = false
}
