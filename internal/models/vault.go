package models

// VaultItem is a saved copy of a message. ID equals the source message ID.
type VaultItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Timestamp  int64  `json:"timestamp"` // time saved, Unix ms
	Type       string `json:"type"`      // text, image, audio, video or document
	Content    string `json:"content"`
	SenderName string `json:"senderName"`
	FileName   string `json:"fileName,omitempty"`
}
