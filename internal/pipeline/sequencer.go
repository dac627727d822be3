package pipeline

import (
	"fmt"
	"sync"
)

// Sequencer re-orders results that complete out of order. Submitted values
// are buffered by ordinal and handed to flush strictly as 0, 1, 2, ...
// Submit is safe for concurrent use; flush is never called concurrently.
type Sequencer[T any] struct {
	mu      sync.Mutex
	next    int
	pending map[int]T
	flush   func(ordinal int, v T) error
	err     error
}

func NewSequencer[T any](flush func(ordinal int, v T) error) *Sequencer[T] {
	return &Sequencer[T]{pending: make(map[int]T), flush: flush}
}

// Submit buffers v and flushes the contiguous run starting at the next
// expected ordinal. A flush error is sticky.
func (s *Sequencer[T]) Submit(ordinal int, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if ordinal < s.next {
		return fmt.Errorf("ordinal %d already flushed", ordinal)
	}
	if _, ok := s.pending[ordinal]; ok {
		return fmt.Errorf("ordinal %d submitted twice", ordinal)
	}
	s.pending[ordinal] = v
	for {
		item, ok := s.pending[s.next]
		if !ok {
			return nil
		}
		delete(s.pending, s.next)
		if err := s.flush(s.next, item); err != nil {
			s.err = fmt.Errorf("flush ordinal %d: %w", s.next, err)
			return s.err
		}
		s.next++
	}
}

// Flushed is the number of values handed to flush so far.
func (s *Sequencer[T]) Flushed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

func (s *Sequencer[T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
