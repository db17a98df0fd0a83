package dto

// AssistantMessageRequest payload.
type AssistantMessageRequest struct {
	Message string `json:"message"`
}

// AssistantMessageResponse is one bot bubble.
type AssistantMessageResponse struct {
	Reply    string `json:"reply"`
	Degraded bool   `json:"degraded"`
}
