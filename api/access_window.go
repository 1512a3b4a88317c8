package api

import "time"

// AccessWindow restricts requests to [StartHour, EndHour) in Location.
// Equal hours disable the restriction; a start after the end wraps around
// midnight.
type AccessWindow struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

func (w AccessWindow) Allows(t time.Time) bool {
	if w.StartHour == w.EndHour {
		return true
	}
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	h := t.In(loc).Hour()
	if w.StartHour < w.EndHour {
		return h >= w.StartHour && h < w.EndHour
	}
	return h >= w.StartHour || h < w.EndHour
}
