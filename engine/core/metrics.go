package core

import "fmt"

// CacheStats counts what happened inside one object cache over its lifetime.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Creations uint64
	Failures  uint64
}

func (s *CacheStats) RecordHit() {
	s.Hits++
}

// RecordMiss records a lookup that had to call into the device. created
// reports whether that call succeeded.
func (s *CacheStats) RecordMiss(created bool) {
	s.Misses++
	if created {
		s.Creations++
	} else {
		s.Failures++
	}
}

// HitRatio returns hits over lookups, or 0 before the first lookup.
func (s CacheStats) HitRatio() float64 {
	lookups := s.Hits + s.Misses
	if lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(lookups)
}

func (s CacheStats) String() string {
	return fmt.Sprintf("hits=%d misses=%d created=%d failed=%d ratio=%.2f", s.Hits, s.Misses, s.Creations, s.Failures, s.HitRatio())
}
