package server

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthResponse carries a freshly issued guest session token.
type AuthResponse struct {
	SessionID string `json:"session_id"`
}
