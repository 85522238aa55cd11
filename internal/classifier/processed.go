package classifier

import "sync"

// ProcessedSet records URLs already classified within a page context
type ProcessedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewProcessedSet returns an empty set
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{urls: make(map[string]struct{})}
}

// Add records the URL and reports whether it was not already present
func (s *ProcessedSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[url]; ok {
		return false
	}

	s.urls[url] = struct{}{}

	return true
}

// Contains reports whether the URL has been recorded
func (s *ProcessedSet) Contains(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.urls[url]

	return ok
}

// Len returns the number of recorded URLs
func (s *ProcessedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.urls)
}

// Clear forgets every recorded URL
func (s *ProcessedSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.urls = make(map[string]struct{})
}
