package models

// Call directions.
const (
	CallIncoming = "incoming"
	CallOutgoing = "outgoing"
)

// CallRecord is one entry of the call history.
type CallRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Direction       string `json:"type"`
	At              int64  `json:"at"` // Unix ms
	DurationSeconds int    `json:"durationSeconds"`
	Missed          bool   `json:"missed"`
}
