package render

import "encoding/gob"

// Flash levels, matching the toast styles in static/css.
const (
	levelSuccess = "success"
	levelInfo    = "info"
	levelError   = "danger"
)

// Flash is a one-shot message stored in the session and shown as a
// toast on the next rendered page.
type Flash struct {
	Type    string
	Message string
}

func FlashSuccess(msg string) Flash {
	return Flash{Type: levelSuccess, Message: msg}
}

func FlashInfo(msg string) Flash {
	return Flash{Type: levelInfo, Message: msg}
}

func FlashError(msg string) Flash {
	return Flash{Type: levelError, Message: msg}
}

func init() {
	gob.Register(Flash{})
}
