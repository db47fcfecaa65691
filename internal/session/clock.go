package session

import "time"

// Clock is the time source a session runs on. Every calls fn once per
// interval until the returned stop function is called; stop must not wait
// for an in-flight fn.
type Clock interface {
	Now() time.Time
	Every(interval time.Duration, fn func()) (stop func())
}
