package shared

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const (
	// CSRFSessionKey is the key used to persist tokens in the session store.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is the form field name carrying the CSRF token.
	CSRFFormField = "csrf_token"
	// CSRFHeader carries the token on non-form requests.
	CSRFHeader = "X-CSRF-Token"
)

// CSRFManager issues and verifies CSRF tokens bound to a session.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken retrieves or generates a CSRF token for the session.
func (m *CSRFManager) EnsureToken(ctx context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", errors.New("session missing")
	}
	if token := sess.Get(CSRFSessionKey); token != "" {
		return token, nil
	}
	token, err := m.generateToken()
	if err != nil {
		return "", err
	}
	sess.Set(CSRFSessionKey, token)
	return token, nil
}

// VerifyToken compares the supplied token with the session token.
func (m *CSRFManager) VerifyToken(ctx context.Context, sess *Session, token string) error {
	if sess == nil || token == "" {
		return ErrCSRFTokenMissing
	}
	expected := sess.Get(CSRFSessionKey)
	if expected == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	if !m.signed(token) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

// token layout: base64(nonce) "." base64(hmac(nonce))
func (m *CSRFManager) generateToken() (string, error) {
	nonce := make([]byte, 18)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(nonce) + "." + m.mac(nonce), nil
}

func (m *CSRFManager) signed(token string) bool {
	for i := 0; i < len(token); i++ {
		if token[i] != '.' {
			continue
		}
		nonce, err := base64.RawURLEncoding.DecodeString(token[:i])
		if err != nil {
			return false
		}
		return hmac.Equal([]byte(m.mac(nonce)), []byte(token[i+1:]))
	}
	return false
}

func (m *CSRFManager) mac(nonce []byte) string {
	h := hmac.New(sha256.New, m.secret)
	_, _ = h.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
