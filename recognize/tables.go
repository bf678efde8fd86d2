package recognize

// state is one of the recognizer's 14 base states.
type state uint8

const (
	stGround state = iota
	stEscape
	stControlFunction
	stControlFunctionError
	stCommandString
	stCommandStringEscape
	stCharacterString
	stCharacterStringEscape
	stControlStringError
	stSingleCharacter
	stControlSequence
	stControlSequenceParameter
	stControlSequenceIntermediate
	stControlSequenceError
	numStates
)

// action is the side effect a transition performs, independent of the
// state change itself.
type action uint8

const (
	actContinue               action = iota // no effect; keep gathering
	actChar                                 // emit the byte as a printable character
	actC01Control                           // emit a one-byte C0/C1 control
	actStartSequence                        // clear params/payload, record the opener byte
	actFinishSequence                       // set end byte; emit the accumulated control
	actPushByte                             // append byte to the intermediate/payload buffer
	actPushByteWithEscape                   // append ESC then byte (literal escape inside a character string)
	actSetPrivate                           // record the CSI private marker byte
	actAddParamValue                        // fold a digit into the parameter accumulator
	actPushParam                            // commit the parameter accumulator to the list
	actPushParamAndByte                     // commit accumulator, then append byte to payload
	actPushParamAndEndSequence              // commit accumulator, set end byte, emit control
)

// entry packs a transition's next state (high nibble) and action (low
// nibble) into one byte, matching the layout STATE_TABLE[state*16+class]
// describes: a single flat lookup drives the whole recognizer.
type entry byte

func pack(s state, a action) entry {
	return entry(byte(s)<<4 | byte(a))
}

func (e entry) next() state  { return state(e >> 4) }
func (e entry) act() action  { return action(e & 0x0F) }

// stateTable[state][class] is the packed transition. Built once at init
// from the declarative rule list below, so the rules stay easy to read
// and audit while the hot path only ever indexes this array.
var stateTable [numStates][16]entry

type rule struct {
	from    state
	classes []class
	next    state
	act     action
}

func allClasses() []class {
	cs := make([]class, numClasses)
	for i := range cs {
		cs[i] = class(i)
	}
	return cs
}

func except(excl ...class) []class {
	skip := make(map[class]bool, len(excl))
	for _, c := range excl {
		skip[c] = true
	}
	var out []class
	for _, c := range allClasses() {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out
}

var (
	// finalAfterEscape are the classes that can terminate a plain escape
	// sequence (one with no CSI-style parameters): digits (ESC 7, ESC 8),
	// private-marker bytes (ESC =, ESC >), ordinary C1-final bytes
	// (ESC D, ESC E, ESC M...), bytes in the 0x60-0x7E range (ESC c...),
	// and a bare ST (ESC \ with no preceding string, which is harmless
	// and simply dispatches to nothing).
	finalAfterEscape = []class{clsParamDigit, clsParamSep, clsPrivate, clsC1Final, clsICF, clsST}

	// finalInCSI are the classes that terminate a CSI sequence from any
	// of its three substates.
	finalInCSI = []class{clsC1Final, clsCSO, clsSOS, clsSCI, clsCSI, clsST, clsICF}
)

func init() {
	rules := buildRules()
	for _, r := range rules {
		for _, c := range r.classes {
			stateTable[r.from][c] = pack(r.next, r.act)
		}
	}
}

func buildRules() []rule {
	var rs []rule
	add := func(from state, classes []class, next state, act action) {
		rs = append(rs, rule{from, classes, next, act})
	}

	// Ground: C0 and C0-in-strings are both ordinary one-byte controls
	// here; ESC opens a sequence; every other class in 0x20-0x7E is a
	// printable character; DEL is ignored padding.
	add(stGround, []class{clsC0, clsC0String}, stGround, actC01Control)
	add(stGround, []class{clsESC}, stEscape, actStartSequence)
	add(stGround, except(clsC0, clsC0String, clsESC, clsDEL), stGround, actChar)
	add(stGround, []class{clsDEL}, stGround, actContinue)

	// Escape: decide what kind of sequence this is.
	add(stEscape, []class{clsIntermediate}, stControlFunction, actPushByte)
	add(stEscape, finalAfterEscape, stGround, actFinishSequence)
	add(stEscape, []class{clsCSI}, stControlSequence, actStartSequence)
	add(stEscape, []class{clsCSO}, stCommandString, actStartSequence)
	add(stEscape, []class{clsSOS}, stCharacterString, actStartSequence)
	add(stEscape, []class{clsSCI}, stSingleCharacter, actStartSequence)
	add(stEscape, []class{clsC0, clsC0String}, stControlFunctionError, actContinue)
	add(stEscape, []class{clsDEL}, stEscape, actContinue)

	// ControlFunction: gathering intermediate bytes after ESC.
	add(stControlFunction, []class{clsIntermediate}, stControlFunction, actPushByte)
	add(stControlFunction, finalAfterEscape, stGround, actFinishSequence)
	add(stControlFunction, []class{clsC0, clsC0String, clsCSO, clsSOS, clsSCI, clsCSI}, stControlFunctionError, actContinue)
	add(stControlFunction, []class{clsDEL}, stControlFunction, actContinue)

	// ControlFunctionError: absorb intermediates; anything else is a
	// terminator, consumed silently.
	add(stControlFunctionError, []class{clsIntermediate}, stControlFunctionError, actContinue)
	add(stControlFunctionError, except(clsIntermediate), stGround, actContinue)

	// CommandString / CommandStringEscape: OSC/DCS/PM/APC payload. ESC
	// checks for a following ST; BS/HT/LF/VT/FF/CR are kept in the
	// payload, and any other C0 control aborts the string (the 0x07 BEL
	// legacy OSC terminator is special-cased in the driver, ahead of this
	// table).
	add(stCommandString, []class{clsESC}, stCommandStringEscape, actContinue)
	add(stCommandString, []class{clsC0}, stControlStringError, actContinue)
	add(stCommandString, except(clsESC, clsC0), stCommandString, actPushByte)
	add(stCommandStringEscape, []class{clsST}, stGround, actFinishSequence)
	add(stCommandStringEscape, except(clsST), stControlStringError, actContinue)

	// CharacterString / CharacterStringEscape: SOS payload, literal and
	// lenient. A stray ESC not followed by ST is pushed back verbatim.
	add(stCharacterString, []class{clsESC}, stCharacterStringEscape, actContinue)
	add(stCharacterString, []class{clsC0}, stControlStringError, actContinue)
	add(stCharacterString, except(clsESC, clsC0), stCharacterString, actPushByte)
	add(stCharacterStringEscape, []class{clsST}, stGround, actFinishSequence)
	add(stCharacterStringEscape, except(clsST), stCharacterString, actPushByteWithEscape)

	// ControlStringError: absorb everything; ESC-then-ST is tracked by an
	// auxiliary flag in the driver since the table alone has only one
	// state for the whole poisoned string.
	add(stControlStringError, allClasses(), stControlStringError, actContinue)

	// SingleCharacter: exactly one more byte of any class completes it.
	add(stSingleCharacter, allClasses(), stGround, actFinishSequence)

	// ControlSequence: right after CSI, or right after a parameter
	// separator. A private marker is only legal here (the very first
	// position).
	add(stControlSequence, []class{clsPrivate}, stControlSequence, actSetPrivate)
	add(stControlSequence, []class{clsParamDigit}, stControlSequenceParameter, actAddParamValue)
	add(stControlSequence, []class{clsParamSep}, stControlSequence, actPushParam)
	add(stControlSequence, []class{clsIntermediate}, stControlSequenceIntermediate, actPushByte)
	add(stControlSequence, finalInCSI, stGround, actPushParamAndEndSequence)
	add(stControlSequence, []class{clsC0, clsC0String, clsESC}, stControlSequenceError, actContinue)
	add(stControlSequence, []class{clsDEL}, stControlSequence, actContinue)

	// ControlSequenceParameter: mid-digit accumulation.
	add(stControlSequenceParameter, []class{clsParamDigit}, stControlSequenceParameter, actAddParamValue)
	add(stControlSequenceParameter, []class{clsParamSep}, stControlSequence, actPushParam)
	add(stControlSequenceParameter, []class{clsIntermediate}, stControlSequenceIntermediate, actPushParamAndByte)
	add(stControlSequenceParameter, finalInCSI, stGround, actPushParamAndEndSequence)
	add(stControlSequenceParameter, []class{clsPrivate, clsC0, clsC0String, clsESC}, stControlSequenceError, actContinue)
	add(stControlSequenceParameter, []class{clsDEL}, stControlSequenceParameter, actContinue)

	// ControlSequenceIntermediate: at least one intermediate byte seen;
	// no parameters may follow.
	add(stControlSequenceIntermediate, []class{clsIntermediate}, stControlSequenceIntermediate, actPushByte)
	add(stControlSequenceIntermediate, finalInCSI, stGround, actPushParamAndEndSequence)
	add(stControlSequenceIntermediate, []class{clsParamDigit, clsParamSep, clsPrivate, clsC0, clsC0String, clsESC}, stControlSequenceError, actContinue)
	add(stControlSequenceIntermediate, []class{clsDEL}, stControlSequenceIntermediate, actContinue)

	// ControlSequenceError: absorb until a final-like byte, which is
	// consumed silently; a literal ESC also breaks out.
	add(stControlSequenceError, except(finalInCSI...), stControlSequenceError, actContinue)
	add(stControlSequenceError, finalInCSI, stGround, actContinue)
	add(stControlSequenceError, []class{clsESC}, stGround, actContinue)

	return rs
}
