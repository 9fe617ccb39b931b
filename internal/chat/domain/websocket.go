package domain

// Action websocket request action
type Action string

const (
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// SubscribeDestination websocket action subscribe
	SubscribeDestination Action = "subscribe"
	// UnsubscribeDestination websocket action unsubscribe
	UnsubscribeDestination Action = "unsubscribe"

	// NotifyMessage websocket action notify_message
	NotifyMessage Action = "notify_message"
)

// WSRequest websocket Request
type WSRequest struct {
	Action      string `json:"action"`
	Username    string `json:"username"`
	Content     string `json:"content"`
	RoomName    string `json:"room_name"`
	Destination string `json:"destination"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
