package sweep

import (
	"github.com/aki/chatsweep/internal/core/message"
)

// Observer receives pipeline events. Metrics and CLI progress output hook in
// here; implementations must not block.
type Observer interface {
	PageFetched(channelID string, raw, owned int)
	DeleteAttempted(done, total int, msg message.Message, err error)
	OperationFinished(status Status, outcome message.Outcome)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) PageFetched(string, int, int) {}

func (NopObserver) DeleteAttempted(int, int, message.Message, error) {}

func (NopObserver) OperationFinished(Status, message.Outcome) {}

// MultiObserver fans events out to several observers in order
type MultiObserver []Observer

func (m MultiObserver) PageFetched(channelID string, raw, owned int) {
	for _, o := range m {
		o.PageFetched(channelID, raw, owned)
	}
}

func (m MultiObserver) DeleteAttempted(done, total int, msg message.Message, err error) {
	for _, o := range m {
		o.DeleteAttempted(done, total, msg, err)
	}
}

func (m MultiObserver) OperationFinished(status Status, outcome message.Outcome) {
	for _, o := range m {
		o.OperationFinished(status, outcome)
	}
}
