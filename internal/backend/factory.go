package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/five82/minerui/internal/config"
)

// Factory maps backend kinds to constructors. Kinds that were compiled out
// are simply never registered.
type Factory struct {
	mu    sync.RWMutex
	ctors map[config.Kind]Constructor
}

// NewFactory returns an empty Factory.
func NewFactory() *Factory {
	return &Factory{ctors: make(map[config.Kind]Constructor)}
}

// Register sets the constructor for kind, replacing any previous one. A nil
// constructor unregisters the kind.
func (f *Factory) Register(kind config.Kind, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctor == nil {
		delete(f.ctors, kind)
		return
	}
	f.ctors[kind] = ctor
}

// Kinds lists the registered kinds in ascending order.
func (f *Factory) Kinds() []config.Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	kinds := make([]config.Kind, 0, len(f.ctors))
	for kind := range f.ctors {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Create builds a backend of the given kind. Every failure, including a
// panicking constructor, is returned as *UnavailableError.
func (f *Factory) Create(kind config.Kind) (b Backend, err error) {
	f.mu.RLock()
	ctor := f.ctors[kind]
	f.mu.RUnlock()

	if ctor == nil {
		return nil, &UnavailableError{Kind: kind, Err: ErrNotRegistered}
	}

	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = &UnavailableError{Kind: kind, Err: fmt.Errorf("constructor panicked: %v", r)}
		}
	}()

	b, err = ctor()
	if err != nil {
		return nil, &UnavailableError{Kind: kind, Err: err}
	}
	if b == nil {
		return nil, &UnavailableError{Kind: kind, Err: fmt.Errorf("constructor returned nil")}
	}
	return b, nil
}
