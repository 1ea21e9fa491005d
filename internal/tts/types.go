package tts

// JobHandle is the URL at which an asynchronous FPT.AI rendering job publishes its audio
type JobHandle string

// SubmitResponse is the JSON body returned by the FPT.AI v5 submission endpoint
type SubmitResponse struct {
	Async     *string `json:"async"`     // Job URL, absent or empty when the request was rejected
	Error     int     `json:"error"`     // Provider error code, 0 on success
	Message   string  `json:"message"`   // Human-readable provider message
	RequestID string  `json:"request_id"`
}

// SynthesisRequest carries the hook text and voice metadata for one submission
type SynthesisRequest struct {
	Text   string
	Voice  string
	Speed  string
	APIKey string
}
