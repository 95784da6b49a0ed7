package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// FirebaseProvider authenticates against the Firebase Identity Toolkit
// email/password endpoints. Session persistence beyond the returned tokens
// is delegated to the caller.
type FirebaseProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewFirebaseProvider(apiKey string) *FirebaseProvider {
	return &FirebaseProvider{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type passwordResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	return p.passwordCall(ctx, "accounts:signInWithPassword", email, password)
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (*User, error) {
	return p.passwordCall(ctx, "accounts:signUp", email, password)
}

func (p *FirebaseProvider) passwordCall(ctx context.Context, endpoint, email, password string) (*User, error) {
	body, err := json.Marshal(&passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode identity request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", p.baseURL, endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
		}
		return nil, mapAPIError(apiErr.Error.Message)
	}

	var payload passwordResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	user := &User{
		UID:          payload.LocalID,
		Email:        payload.Email,
		IDToken:      payload.IDToken,
		RefreshToken: payload.RefreshToken,
	}

	// The ID token claims are authoritative for uid and expiry; the REST
	// fields cover tokens the parser cannot read.
	if uid, err := UIDFromToken(payload.IDToken); err == nil {
		user.UID = uid
	}
	if expiresAt, err := TokenExpiry(payload.IDToken); err == nil {
		user.ExpiresAt = expiresAt
	} else if seconds, err := strconv.Atoi(payload.ExpiresIn); err == nil {
		user.ExpiresAt = time.Now().Add(time.Duration(seconds) * time.Second)
	}

	return user, nil
}

func mapAPIError(message string) error {
	switch {
	case message == "EMAIL_NOT_FOUND",
		message == "INVALID_PASSWORD",
		message == "INVALID_LOGIN_CREDENTIALS":
		return ErrInvalidCredentials
	case message == "EMAIL_EXISTS":
		return ErrEmailAlreadyInUse
	case message == "INVALID_EMAIL":
		return ErrInvalidEmail
	case message == "USER_DISABLED":
		return ErrUserDisabled
	case strings.HasPrefix(message, "WEAK_PASSWORD"):
		return ErrWeakPassword
	default:
		return fmt.Errorf("identity service error: %s", message)
	}
}
