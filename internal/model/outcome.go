package model

// Outcome statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Outcome is the envelope returned for every calculation request.
// Exactly one of Data and Message is populated.
type Outcome struct {
	Status  string        `json:"status"`
	Data    *DeviceResult `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Success wraps a calculated device
func Success(result *DeviceResult) Outcome {
	return Outcome{Status: StatusSuccess, Data: result}
}

// Failure wraps an error message
func Failure(message string) Outcome {
	return Outcome{Status: StatusError, Message: message}
}

// OK reports whether the outcome is a success
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}
