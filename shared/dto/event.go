package dto

// SyncAppliedEvent is published after an inbound sync document is stored.
type SyncAppliedEvent struct {
	Event     string `json:"event"`
	Message   string `json:"message"`
	HotelCode string `json:"hotel_code"`
	EchoToken string `json:"echo_token"`
	Entries   int    `json:"entries"`
	AppliedAt string `json:"applied_at"`
}
