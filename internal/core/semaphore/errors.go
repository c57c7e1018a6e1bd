package semaphore

import (
	"fmt"
	"strings"
)

// ErrChannelBusy is returned when a channel already has the maximum number of
// running sweeps.
type ErrChannelBusy struct {
	ChannelID string
	Holders   []Holder
}

func (e ErrChannelBusy) Error() string {
	ids := make([]string, 0, len(e.Holders))
	for _, h := range e.Holders {
		ids = append(ids, fmt.Sprintf("%s (pid %d)", h.OperationID, h.PID))
	}
	return fmt.Sprintf("channel %s is already being swept by %s", e.ChannelID, strings.Join(ids, ", "))
}

// ErrAlreadyHolder is returned when an operation acquires twice.
type ErrAlreadyHolder struct {
	OperationID string
}

func (e ErrAlreadyHolder) Error() string {
	return fmt.Sprintf("operation %s already holds a slot", e.OperationID)
}

// ErrNotHolder is returned when releasing a slot the operation does not hold.
type ErrNotHolder struct {
	OperationID string
}

func (e ErrNotHolder) Error() string {
	return fmt.Sprintf("operation %s does not hold a slot", e.OperationID)
}
