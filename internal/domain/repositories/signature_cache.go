package repositories

import "context"

// SignatureCache is a device-local slot holding the signer's last drawn signature.
// It is never synced to the shared store.
type SignatureCache interface {
	// SavedSignature returns the cached image data, if any
	SavedSignature(ctx context.Context) (string, bool, error)

	// SaveSignature overwrites the cached image data
	SaveSignature(ctx context.Context, imageData string) error
}

// SignatureCacheProvider resolves the cache slot for one signer device
type SignatureCacheProvider interface {
	ForDevice(deviceID string) SignatureCache
}
