package models

// Message types.
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeAI       = "ai"
	TypeAudio    = "audio"
	TypeVideo    = "video"
	TypeDocument = "document"
)

// Delivery states. Only DeliverySent is ever assigned by the service.
const (
	DeliveryPending   = "en-espera"
	DeliverySent      = "enviado"
	DeliveryDelivered = "recibido"
	DeliveryRead      = "leido"
)

// Message represents a chat message in a room's list.
type Message struct {
	ID           string    `json:"id"` // ULID
	Text         string    `json:"text"`
	SenderID     string    `json:"senderId"`
	SenderName   string    `json:"senderName"`
	Timestamp    int64     `json:"timestamp"` // Unix ms
	Type         string    `json:"type"`
	FileName     string    `json:"fileName,omitempty"`
	FileSize     string    `json:"fileSize,omitempty"`
	Status       string    `json:"status,omitempty"`
	IsAIResponse bool      `json:"isAiResponse,omitempty"`
	ReplyTo      *ReplyRef `json:"replyTo,omitempty"`
}

// ReplyRef is a copy of the quoted message taken at send time.
type ReplyRef struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SenderName string `json:"senderName"`
}

// Draft holds the caller-supplied fields of a message to send.
type Draft struct {
	Text         string    `json:"text"`
	SenderID     string    `json:"senderId"`
	SenderName   string    `json:"senderName"`
	Type         string    `json:"type,omitempty"`
	FileName     string    `json:"fileName,omitempty"`
	FileSize     string    `json:"fileSize,omitempty"`
	IsAIResponse bool      `json:"isAiResponse,omitempty"`
	ReplyTo      *ReplyRef `json:"replyTo,omitempty"`
}

// IsMedia reports whether the message carries image, audio or video payload.
// Only media messages are eligible for pruning.
func (m Message) IsMedia() bool {
	switch m.Type {
	case TypeImage, TypeAudio, TypeVideo:
		return true
	}
	return false
}

// IsTextual reports whether the payload is literal text.
func (m Message) IsTextual() bool {
	return m.Type == TypeText || m.Type == TypeAI
}

// ValidType reports whether t is a known message type.
func ValidType(t string) bool {
	switch t {
	case TypeText, TypeImage, TypeAI, TypeAudio, TypeVideo, TypeDocument:
		return true
	}
	return false
}
