package app

import "sync"

// Pod lets a host park an App in a container that may be reached from any
// goroutine, such as a package-level variable shared with callbacks. Every
// operation checks that the caller is on the App's thread.
type Pod[E any] struct {
	mu  sync.Mutex
	app *App[E]
}

func NewPod[E any]() *Pod[E] {
	return &Pod[E]{}
}

// Set stores a, replacing any previous App.
func (p *Pod[E]) Set(a *App[E]) {
	a.rt.thread.Assert("Pod.Set")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.app = a
}

// Get returns the stored App. It panics if the pod is empty or the caller
// is not on the App's thread.
func (p *Pod[E]) Get() *App[E] {
	p.mu.Lock()
	a := p.app
	p.mu.Unlock()
	if a == nil {
		panic(&Error{Kind: KindLookup, Op: "Pod.Get", Msg: "pod is empty"})
	}
	a.rt.thread.Assert("Pod.Get")
	return a
}

// IsSet reports whether an App is stored.
func (p *Pod[E]) IsSet() bool {
	p.mu.Lock()
	a := p.app
	p.mu.Unlock()
	if a == nil {
		return false
	}
	a.rt.thread.Assert("Pod.IsSet")
	return true
}
