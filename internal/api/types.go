package api

import "time"

// User is an identity as the backend reports it. The session user and
// every conversation partner share this shape.
type User struct {
	ID         string `json:"_id"`
	FullName   string `json:"fullName"`
	Email      string `json:"email,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// DisplayName returns the full name, falling back to the id.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.ID
}

// Message is a direct message between two users. Text and Image are both
// optional; Image is a data URL or a reference the backend stored.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Involves reports whether userID is the sender or the receiver.
func (m Message) Involves(userID string) bool {
	return userID != "" && (m.SenderID == userID || m.ReceiverID == userID)
}

// SendRequest is the body of a send call. A nil Image is sent as JSON null.
type SendRequest struct {
	Text  string  `json:"text"`
	Image *string `json:"image"`
}
