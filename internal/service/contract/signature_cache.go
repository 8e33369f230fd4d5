package contract

import (
	"context"
	"sync"

	"studioflow/internal/domain/repositories"
)

// MemorySignatureCaches keeps one signature slot per device in process memory.
// Used when no cache file is configured and in tests.
type MemorySignatureCaches struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemorySignatureCaches creates an empty in-memory cache provider
func NewMemorySignatureCaches() *MemorySignatureCaches {
	return &MemorySignatureCaches{slots: make(map[string]string)}
}

// ForDevice returns the slot for a device
func (m *MemorySignatureCaches) ForDevice(deviceID string) repositories.SignatureCache {
	return &memorySlot{owner: m, deviceID: deviceID}
}

type memorySlot struct {
	owner    *MemorySignatureCaches
	deviceID string
}

func (s *memorySlot) SavedSignature(_ context.Context) (string, bool, error) {
	s.owner.mu.RLock()
	defer s.owner.mu.RUnlock()
	img, ok := s.owner.slots[s.deviceID]
	return img, ok, nil
}

func (s *memorySlot) SaveSignature(_ context.Context, imageData string) error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	s.owner.slots[s.deviceID] = imageData
	return nil
}
