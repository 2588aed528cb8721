package gate

import "sync"

// Navigator moves the browser to another route. Replace means the current
// history entry is replaced rather than pushed.
type Navigator interface {
	Navigate(to string, replace bool)
}

// Navigation is a recorded Navigate call.
type Navigation struct {
	To      string
	Replace bool
}

// Recorder is the Navigator used over HTTP: it keeps the last navigation so
// the handler serving the request can turn it into a redirect.
type Recorder struct {
	mu   sync.Mutex
	last *Navigation
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Navigate(to string, replace bool) {
	r.mu.Lock()
	r.last = &Navigation{To: to, Replace: replace}
	r.mu.Unlock()
}

// Take returns the pending navigation, if any, and clears it.
func (r *Recorder) Take() (Navigation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Navigation{}, false
	}
	nav := *r.last
	r.last = nil
	return nav, true
}
