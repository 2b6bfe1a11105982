package dto

// TokenRequest captures API client credentials.
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse contains the issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}
