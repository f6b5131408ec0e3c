package entities

import "time"

// ConversationTranscript is one conversation's durable transcript: the
// newline-joined "User: …"/"AI: …" document keyed by the caller-supplied
// conversation identifier. One row per identifier; rows spring into existence
// on first append and are deleted on reset.
type ConversationTranscript struct {
	ID             uint   `gorm:"primarykey"`
	ConversationID string `gorm:"type:varchar(191);uniqueIndex;not null"`
	History        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
