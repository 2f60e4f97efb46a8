package core

import "github.com/google/uuid"

// IdentifierNew returns a unique, human readable name for an engine object
// such as a cache instance. The kind is kept as a prefix to ease log reading.
func IdentifierNew(kind string) string {
	id := uuid.New().String()
	if kind == "" {
		return id
	}
	return kind + "-" + id[:8]
}
