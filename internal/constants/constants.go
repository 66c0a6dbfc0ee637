// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Timeout constants used across the application
const (
	// DefaultAPITimeout is the timeout for identification requests (uploads can be large)
	DefaultAPITimeout = 120 * time.Second
	// DefaultChatTimeout is the timeout for follow-up chat requests
	DefaultChatTimeout = 60 * time.Second
	// DefaultReadTimeout bounds reading a selected image from disk
	DefaultReadTimeout = 30 * time.Second
)

// Application defaults
const (
	AppName          = "leafify"
	DefaultEndpoint  = "http://127.0.0.1:5000"
	DefaultStoreKind = "file"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// History limits and keys
const (
	// HistoryKey is the storage key holding the history JSON array
	HistoryKey = "plantHistory"
	// MaxHistoryEntries caps the history length
	MaxHistoryEntries = 10
)

// User-facing text
const (
	DescriptionFallback = "Not available."
	EmptyHistoryText    = "No identifications yet."
	NoSelectionNotice   = "Please select an image first!"
	BusyNotice          = "An identification is already in progress."
	NoSuggestionsText   = "Could not identify the plant."
)

// Chat text
const (
	NoPlantNotice    = "Identify a plant before asking a question."
	EmptyQuestionMsg = "Please enter a question."
)
