package response

// Response represents the error envelope returned by the API
type Response struct {
	Status     string      `json:"status"`     // "success" or "error"
	StatusCode int         `json:"statusCode"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// Message is the body of acknowledgement-only responses such as deletes
type Message struct {
	Message string `json:"message"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, message string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Message:    message,
	}
}

// Ack returns a {message} body
func Ack(message string) Message {
	return Message{Message: message}
}
