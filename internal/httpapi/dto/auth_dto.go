package dto

// Data Transfer Objects for the signup / token-exchange flow.

// SignupRequest: payload for passwordless registration. The username value
// is checked by the custom "username" validator registered on gin's binding
// engine (character set and the reserved value "me").
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150,username"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignupResponse echoes the registered identity; the confirmation code
// travels by email only.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for exchanging a confirmation code for tokens.
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse: access/refresh token pair bound to the user's identity.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

// RefreshRequest: payload for rotating an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RevokeRequest: payload for invalidating a refresh token on logout.
type RevokeRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RevokeResponse struct {
	Message string `json:"message"`
}

// RefreshResponse: new access token from a live refresh token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}
