// Package chronicle turns exported chat transcripts into structured analytics:
// activity counts, emoji and word frequency, engagement threads, shared-link
// engagement, media statistics and per-day sentiment trends.
//
// Parsing is strictly sequential; the sentiment aggregation stage is the only
// concurrent part of the pipeline.
package chronicle

import "time"

// MessageKind classifies a parsed transcript line.
type MessageKind int

const (
	// KindContent is an ordinary chat message written by a participant.
	KindContent MessageKind = iota
	// KindSystem is an app-generated notice (group created, security code
	// changed, and so on). System messages stay in the sequence but are
	// excluded from content analytics.
	KindSystem
	// KindMedia is a media share whose body was replaced by the export
	// ("image omitted", "<attached: ...>").
	KindMedia
)

func (k MessageKind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindSystem:
		return "system"
	case KindMedia:
		return "media"
	default:
		return "unknown"
	}
}

// MediaType is the closed set of recognized media subtypes.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaGIF      MediaType = "gif"
	MediaSticker  MediaType = "sticker"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
	// MediaUnknown is used for attachments whose extension we don't
	// recognize; they are recorded, not dropped.
	MediaUnknown MediaType = "unknown"
)

// Message is one parsed transcript record. Multi-line continuations are merged
// into a single Message before classification; sender and text have already
// been normalized (no bidi/zero-width control characters).
type Message struct {
	Timestamp time.Time   `json:"timestamp"`
	Sender    string      `json:"sender"`
	Text      string      `json:"text"`
	Kind      MessageKind `json:"kind"`
	// Media is set only when Kind == KindMedia.
	Media MediaType `json:"media_type,omitempty"`
}

// IsContent reports whether the message participates in content analytics,
// thread reconstruction and link detection.
func (m Message) IsContent() bool { return m.Kind == KindContent }

// DateKey returns the message's local calendar date as YYYY-MM-DD.
func (m Message) DateKey() string { return m.Timestamp.Format("2006-01-02") }

// MediaItem is one detected media share. Reactions is filled in by a later
// pass over the messages that follow the share, and is read-only afterward.
type MediaItem struct {
	Type      MediaType `json:"type"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Reactions int       `json:"reactions"`
}
