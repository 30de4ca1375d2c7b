package codec

import (
	"fmt"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Codec{
		"cabac-dct": func() Codec { return NewCABACDCTCodec(26) },
	}
)

// Register installs a Codec factory under name, so a descriptor's
// VolumeCodec field can select an alternate or user-supplied
// implementation without the container/region packages knowing about it.
func Register(name string, factory func() Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Lookup returns a fresh Codec for name, or an error if name was never
// registered.
func Lookup(name string) (Codec, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("codec: no implementation registered for %q", name)
	}
	return factory(), nil
}
