package keyboard

// MouseEvent carries the raw bytes of a recognized mouse report. The
// engine does not parse button, coordinate, or motion data; that is
// the mouse collaborator's job. Seq is only valid for the duration of
// the OnMouseTracking call.
type MouseEvent struct {
	Protocol Key
	Seq      []byte
}

// sniffMouse recognizes the three mouse report shapes by fixed-offset
// byte inspection:
//
//	x11:   ESC [ M b x y            (6 bytes, single report)
//	sgr:   ESC [ < p ; x ; y M/m    (>= 9 bytes)
//	urxvt: ESC [ p ; x ; y M        (>= 9 bytes, p starts 10-99)
//
// It returns the protocol key, or keyUnset if the buffer holds no
// complete mouse report. Callers guarantee buf starts with ESC.
func sniffMouse(buf []byte) Key {
	if len(buf) < 3 {
		return keyUnset
	}

	// x11 mouse tracking
	if len(buf) >= 6 && buf[1] == '[' && buf[2] == 'M' {
		return KeyX11Mouse
	}

	// SGR mouse tracking
	if len(buf) >= 9 && buf[1] == '[' && buf[2] == '<' &&
		(buf[len(buf)-1] == 'M' || buf[len(buf)-1] == 'm') {
		return KeyExtendedMouse
	}

	// urxvt mouse tracking
	if len(buf) >= 9 && buf[1] == '[' &&
		buf[2] >= '1' && buf[2] <= '9' &&
		buf[3] >= '0' && buf[3] <= '9' &&
		buf[len(buf)-1] == 'M' {
		return KeyUrxvtMouse
	}

	return keyUnset
}
