package cache

import "errors"

// ErrDegraded marks an operation served by the fallback tier. It is logged and
// counted, never returned to callers.
var ErrDegraded = errors.New("cache degraded: primary backend unavailable")

// ErrNotStored is returned by SetJSON when the value could not be written
// (unknown namespace).
var ErrNotStored = errors.New("cache: value not stored")
