package host

import "sync"

// Disposable releases a registration.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function to [Disposable]. The function runs at most
// once.
func DisposeFunc(fn func()) Disposable {
	return &funcDisposable{fn: fn}
}

type funcDisposable struct {
	fn   func()
	once sync.Once
}

func (d *funcDisposable) Dispose() {
	d.once.Do(d.fn)
}

// Subscriptions collects [Disposable] values and disposes them together.
//
// The zero value is ready to use.
type Subscriptions struct {
	items    []Disposable
	mu       sync.Mutex
	disposed bool
}

// Add appends ds. If the set was already disposed, ds are disposed
// immediately.
func (s *Subscriptions) Add(ds ...Disposable) {
	s.mu.Lock()

	if s.disposed {
		s.mu.Unlock()

		for _, d := range ds {
			d.Dispose()
		}

		return
	}

	s.items = append(s.items, ds...)
	s.mu.Unlock()
}

// Len returns the number of live registrations.
func (s *Subscriptions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Dispose disposes every registration in insertion order. Idempotent.
func (s *Subscriptions) Dispose() {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.disposed = true
	s.mu.Unlock()

	for _, d := range items {
		d.Dispose()
	}
}
