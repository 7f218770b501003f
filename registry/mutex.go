package registry

import "sync"

// rwMutex is BaseRegistry's lock. It does not make a zero BaseRegistry
// usable: the items map stays nil until NewBaseRegistry creates it.
type rwMutex struct {
	sync.RWMutex
}
