package domain

import (
	"strconv"
	"time"
)

// ContentType enumerates the content formats the workspace can produce.
type ContentType string

const (
	ContentBlog     ContentType = "Blog Post"
	ContentTweet    ContentType = "Twitter Thread"
	ContentEmail    ContentType = "Cold Email"
	ContentLinkedIn ContentType = "LinkedIn Post"
)

// ContentTypes lists every supported format in display order.
var ContentTypes = []ContentType{ContentBlog, ContentTweet, ContentEmail, ContentLinkedIn}

// Valid reports whether t is one of the supported formats.
func (t ContentType) Valid() bool {
	switch t {
	case ContentBlog, ContentTweet, ContentEmail, ContentLinkedIn:
		return true
	}
	return false
}

// GenerationHistory records one completed generation. Entries are immutable
// after creation and live only in process memory.
type GenerationHistory struct {
	ID      string      `json:"id"`
	Type    ContentType `json:"type"`
	Topic   string      `json:"topic"`
	Content string      `json:"content"`
	Date    string      `json:"date"`
}

// NewHistoryEntry builds an entry stamped with the current time. The ID is
// time-based and unique within the process only.
func NewHistoryEntry(contentType ContentType, topic, content string) GenerationHistory {
	now := time.Now()
	return GenerationHistory{
		ID:      strconv.FormatInt(now.UnixMilli(), 10),
		Type:    contentType,
		Topic:   topic,
		Content: content,
		Date:    now.UTC().Format(time.RFC3339),
	}
}
