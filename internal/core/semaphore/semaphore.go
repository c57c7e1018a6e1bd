// Package semaphore tracks running bulk deletes in a shared state file so that
// no two sweeps, in this process or another, work on the same channel at once.
package semaphore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/aki/chatsweep/internal/core/sweep"
	"github.com/aki/chatsweep/internal/filemanager"
)

var _ sweep.ChannelGuard = (*FileSemaphore)(nil)

// Holder is one running sweep.
type Holder struct {
	OperationID string    `yaml:"operation_id" json:"operation_id"`
	ChannelID   string    `yaml:"channel_id" json:"channel_id"`
	PID         int       `yaml:"pid" json:"pid"`
	AcquiredAt  time.Time `yaml:"acquired_at" json:"acquired_at"`
}

type semaphoreData struct {
	Holders []Holder `yaml:"holders"`
}

// FileSemaphore is a per-channel counting semaphore persisted to a file.
// Holders whose process has exited are dropped on every access.
type FileSemaphore struct {
	path     string
	capacity int
	files    *filemanager.Manager[semaphoreData]

	pid   int
	alive func(pid int) bool
	now   func() time.Time
}

// New creates a semaphore allowing capacity concurrent sweeps per channel.
func New(path string, capacity int) *FileSemaphore {
	if capacity < 1 {
		capacity = 1
	}
	return &FileSemaphore{
		path:     path,
		capacity: capacity,
		files:    filemanager.NewManager[semaphoreData](),
		pid:      os.Getpid(),
		alive:    processAlive,
		now:      time.Now,
	}
}

// Path returns the state file location.
func (s *FileSemaphore) Path() string {
	return s.path
}

// Acquire takes a slot on channelID for operationID. The returned function
// releases it.
func (s *FileSemaphore) Acquire(ctx context.Context, channelID, operationID string) (func() error, error) {
	err := s.files.Update(ctx, s.path, func(data *semaphoreData) error {
		s.prune(data)

		var onChannel []Holder
		for _, h := range data.Holders {
			if h.OperationID == operationID {
				return ErrAlreadyHolder{OperationID: operationID}
			}
			if h.ChannelID == channelID {
				onChannel = append(onChannel, h)
			}
		}
		if len(onChannel) >= s.capacity {
			return ErrChannelBusy{ChannelID: channelID, Holders: onChannel}
		}

		data.Holders = append(data.Holders, Holder{
			OperationID: operationID,
			ChannelID:   channelID,
			PID:         s.pid,
			AcquiredAt:  s.now().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	release := func() error {
		// Release must work after the sweep's context was cancelled
		return s.Release(context.Background(), operationID)
	}
	return release, nil
}

// Release frees the slot held by operationID.
func (s *FileSemaphore) Release(ctx context.Context, operationID string) error {
	return s.files.Update(ctx, s.path, func(data *semaphoreData) error {
		kept := make([]Holder, 0, len(data.Holders))
		found := false
		for _, h := range data.Holders {
			if h.OperationID == operationID {
				found = true
				continue
			}
			kept = append(kept, h)
		}
		if !found {
			return ErrNotHolder{OperationID: operationID}
		}
		data.Holders = kept
		return nil
	})
}

// Holders lists running sweeps, oldest first.
func (s *FileSemaphore) Holders(ctx context.Context) ([]Holder, error) {
	data, err := s.files.Read(ctx, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Holder{}, nil
		}
		return nil, fmt.Errorf("failed to read active sweeps: %w", err)
	}

	s.prune(data)
	holders := append([]Holder{}, data.Holders...)
	sort.SliceStable(holders, func(i, j int) bool {
		return holders[i].AcquiredAt.Before(holders[j].AcquiredAt)
	})
	return holders, nil
}

// Clear drops every holder, for recovery after a crash on a reused PID.
func (s *FileSemaphore) Clear(ctx context.Context) error {
	return s.files.Delete(ctx, s.path)
}

func (s *FileSemaphore) prune(data *semaphoreData) {
	kept := data.Holders[:0]
	for _, h := range data.Holders {
		if h.PID == s.pid || s.alive(h.PID) {
			kept = append(kept, h)
		}
	}
	data.Holders = kept
}
