package web

import "sync"

// Surface is a named output surface backed by memory: the refresh loop
// replaces its content, page requests read it. Safe for concurrent use.
type Surface struct {
	mu      sync.RWMutex
	content string
}

func (s *Surface) Replace(content string) {
	s.mu.Lock()
	s.content = content
	s.mu.Unlock()
}

func (s *Surface) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}
