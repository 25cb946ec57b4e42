package models

// RoomMetadata is the derived display information of a room.
type RoomMetadata struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"desc"`
	IsPrivate   bool   `json:"isPrivate,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// ChatSummary is one row of the visible chat list.
type ChatSummary struct {
	ID string `json:"id"`
	RoomMetadata
	LastMessage string `json:"lastMessage"`
	Timestamp   int64  `json:"timestamp"`
	UnreadCount int    `json:"unreadCount"`
}
