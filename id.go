package cfkeypair

import "github.com/oklog/ulid/v2"

// IDGenerator produces invocation IDs used to correlate log lines.
type IDGenerator interface {
	NewID() string
}

// ULIDGenerator generates lexically sortable IDs.
type ULIDGenerator struct{}

func (ULIDGenerator) NewID() string {
	return ulid.Make().String()
}
