package models

// Result is the outcome of a session action. Actions never return errors;
// failures are reported through Success and Error instead.
type Result struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
	Profile map[string]any `json:"profile,omitempty"`
	Count   *int           `json:"count,omitempty"`
}

// Succeeded builds a successful Result.
func Succeeded() Result {
	return Result{Success: true}
}

// Failed builds a failed Result carrying message.
func Failed(message string) Result {
	return Result{Success: false, Error: message}
}

// Credentials is the payload of the login endpoints.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the payload of the registration endpoint.
// Phone and Email are optional; Role defaults to reader on the server.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// AdminRegisterRequest is the payload of the administrative registration endpoint.
type AdminRegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	SecretKey string `json:"secret_key"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// LoginResponse is the body returned by both login endpoints.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Token    string `json:"token"`
	UserID   any    `json:"user_id"`
	Username any    `json:"username"`
	Role     any    `json:"role"`
}

// Identity returns the user partial stored on successful login.
func (r LoginResponse) Identity() map[string]any {
	return map[string]any{
		UserIDKey:   r.UserID,
		UsernameKey: r.Username,
		RoleKey:     r.Role,
	}
}

// RegisterResponse is the body returned by the registration endpoint.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ProfileResponse is the body returned by GET /profile/.
type ProfileResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Profile map[string]any `json:"profile"`
}

// MessagesResponse is the part of GET /messages/ the session reads.
type MessagesResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	UnreadCount any    `json:"unread_count"`
}
