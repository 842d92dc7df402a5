package psychescan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultFirebaseBaseURL is the Identity Toolkit REST endpoint
const DefaultFirebaseBaseURL = "https://identitytoolkit.googleapis.com/v1"

// FirebaseConfig configures the Firebase Authentication provider
type FirebaseConfig struct {
	APIKey  string       `mapstructure:"api_key"`
	BaseURL string       `mapstructure:"base_url"`
	Client  *http.Client `mapstructure:"-"`
}

// FirebaseAuth signs users in with Firebase email/password accounts
type FirebaseAuth struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewFirebaseAuth creates a Firebase identity provider
func NewFirebaseAuth(cfg FirebaseConfig) (*FirebaseAuth, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Firebase API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultFirebaseBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FirebaseAuth{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  cfg.Client,
	}, nil
}

// SignInWithPassword implements IdentityProvider
func (f *FirebaseAuth) SignInWithPassword(ctx context.Context, email, password string) (*User, error) {
	return f.call(ctx, "accounts:signInWithPassword", email, password)
}

// SignUpWithPassword implements IdentityProvider
func (f *FirebaseAuth) SignUpWithPassword(ctx context.Context, email, password string) (*User, error) {
	return f.call(ctx, "accounts:signUp", email, password)
}

type firebaseAccountResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type firebaseErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *FirebaseAuth) call(ctx context.Context, method, email, password string) (*User, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, &AuthError{Kind: AuthUnknown, Code: "encode", Err: err}
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", f.baseURL, method, url.QueryEscape(f.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &AuthError{Kind: AuthUnknown, Code: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &AuthError{Kind: AuthUnknown, Code: "network", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &AuthError{Kind: AuthUnknown, Code: "read", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var fe firebaseErrorResponse
		if err := json.Unmarshal(data, &fe); err != nil || fe.Error.Message == "" {
			return nil, &AuthError{Kind: AuthUnknown, Code: resp.Status, Err: fmt.Errorf("unexpected response: %s", resp.Status)}
		}
		return nil, classifyFirebaseError(fe.Error.Message)
	}

	var account firebaseAccountResponse
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, &AuthError{Kind: AuthUnknown, Code: "decode", Err: err}
	}

	return &User{
		ID:           account.LocalID,
		Email:        account.Email,
		IDToken:      account.IDToken,
		RefreshToken: account.RefreshToken,
	}, nil
}

// classifyFirebaseError maps an Identity Toolkit error message such as
// "WEAK_PASSWORD : Password should be at least 6 characters" to an AuthError.
func classifyFirebaseError(message string) *AuthError {
	code := message
	if i := strings.Index(code, " :"); i >= 0 {
		code = code[:i]
	}
	code = strings.TrimSpace(code)

	kind := AuthUnknown
	switch code {
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_EMAIL", "MISSING_PASSWORD":
		kind = AuthInvalidCredentials
	case "EMAIL_EXISTS":
		kind = AuthEmailInUse
	case "WEAK_PASSWORD":
		kind = AuthWeakPassword
	}
	return &AuthError{Kind: kind, Code: code, Err: fmt.Errorf("%s", message)}
}
