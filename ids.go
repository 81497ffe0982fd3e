package formdraft

import "github.com/google/uuid"

// IDGenerator returns a new identifier for questions, options and snapshots.
type IDGenerator func() string

func defaultIDGenerator() string {
	return uuid.NewString()
}
