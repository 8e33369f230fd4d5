package config

import "time"

const (
	// MaxContractTitleLength is the maximum length for contract titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxContractTitleLength = 255

	// MaxClientNameLength is the maximum length for client names
	MaxClientNameLength = 255

	// MaxPartiesPerContract bounds the party list of a single contract.
	// A provider, a couple of clients and a witness is the realistic ceiling.
	MaxPartiesPerContract = 10

	// MaxRevisionMessageLength caps "request changes" messages
	MaxRevisionMessageLength = 4000

	// MaxGuidedAnswerLength caps a single guided-build answer
	MaxGuidedAnswerLength = 2000

	// MaxSignaturePayloadBytes caps a drawn signature data URL
	MaxSignaturePayloadBytes = 512 * 1024

	// DefaultStaleClientThreshold is how long without contact before a client is stale
	DefaultStaleClientThreshold = 30 * 24 * time.Hour

	// DefaultSignerLinkTTL is how long a signing link stays valid
	DefaultSignerLinkTTL = 14 * 24 * time.Hour

	// GuidedSessionIdleTimeout drops guided builds nobody has touched for this long
	GuidedSessionIdleTimeout = 2 * time.Hour
)
