package auth

import "github.com/google/uuid"

// LoginInput carries owner credentials. Owners authenticate with their
// store id and the admin password set at registration.
type LoginInput struct {
	StoreID  uuid.UUID
	Password string
}

// TokenPair is the issued access/refresh credential set.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
