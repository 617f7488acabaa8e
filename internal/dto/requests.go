package dto

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Handle      string `json:"handle" binding:"required,min=3,max=20,alphanum"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=50"`
	Password    string `json:"password" binding:"required,min=8"`
}

// SignInRequest represents a password sign-in request
type SignInRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// OAuthSignInRequest represents an OAuth sign-in request carrying the
// provider authorization code
type OAuthSignInRequest struct {
	Code string `json:"code" binding:"required"`
}

// LinkOAuthRequest represents a request to link an OAuth identity to the
// authenticated account
type LinkOAuthRequest struct {
	Provider string `json:"provider" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// UnlinkOAuthRequest represents a request to remove an OAuth connection
type UnlinkOAuthRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// UserInfo represents user information in an auth response
type UserInfo struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// UserResponse represents a user profile response
type UserResponse struct {
	ID          string   `json:"id"`
	Handle      string   `json:"handle"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	AvatarURL   *string  `json:"avatar_url"`
	IsVerified  bool     `json:"is_verified"`
	HasPassword bool     `json:"has_password"`
	Providers   []string `json:"providers"`
	CreatedAt   string   `json:"created_at"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
