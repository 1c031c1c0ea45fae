package unlock

import "sync"

// Tracker is the in-flight bookkeeping shared by unlock sources: at most one request per
// session token, plus the set of requests cancelled before they resolved.
type Tracker struct {
	mu         sync.Mutex
	inflight   map[string]string
	superseded map[string]struct{}
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		inflight:   make(map[string]string),
		superseded: make(map[string]struct{}),
	}
}

// Begin claims the session slot for requestID.
func (t *Tracker) Begin(sessionToken, requestID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inflight[sessionToken]; busy {
		return ErrAlreadyPending
	}
	t.inflight[sessionToken] = requestID
	return nil
}

// Finish releases the slot and reports whether the request was cancelled meanwhile.
func (t *Tracker) Finish(sessionToken, requestID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflight[sessionToken] == requestID {
		delete(t.inflight, sessionToken)
	}
	if _, ok := t.superseded[requestID]; ok {
		delete(t.superseded, requestID)
		return true
	}
	return false
}

// Cancel supersedes requestID if it is the one in flight for the session.
func (t *Tracker) Cancel(sessionToken, requestID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflight[sessionToken] != requestID {
		return false
	}
	delete(t.inflight, sessionToken)
	t.superseded[requestID] = struct{}{}
	return true
}

// Pending returns the in-flight request id for the session, if any.
func (t *Tracker) Pending(sessionToken string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.inflight[sessionToken]
	return id, ok
}
