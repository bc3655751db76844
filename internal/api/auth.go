package api

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	SessionCookieName = "arena_operator_session"

	SessionDuration = 24 * time.Hour

	CookieSecure   = false // set true in production behind TLS
	CookieHTTPOnly = true
	CookieSameSite = http.SameSiteLaxMode
)

// OperatorSession represents an authenticated operator session,
// created after the caller presents the shared signing key.
type OperatorSession struct {
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionManager handles operator session authentication for the
// mutating control-plane routes (creating and scheduling matches).
// Read-only spectator routes never require a session.
type SessionManager struct {
	mu sync.RWMutex

	sessions map[string]*OperatorSession

	secretKey  []byte
	signingKey string // shared secret an operator must present to log in
}

// NewSessionManager creates a session manager. signingKey is the
// shared secret operators present to POST /api/auth/login; an empty
// signingKey disables login (EnableAdminAuth should stay false then).
func NewSessionManager(signingKey string) *SessionManager {
	secretKey := make([]byte, 32)
	if _, err := rand.Read(secretKey); err != nil {
		log.Printf("failed to generate session secret, using fallback")
		secretKey = []byte("arena-core-default-secret-key-32")
	}

	sm := &SessionManager{
		sessions:   make(map[string]*OperatorSession),
		secretKey:  secretKey,
		signingKey: signingKey,
	}

	go sm.cleanupExpiredSessions()

	return sm
}

// Authenticate checks a presented key against the configured signing
// key and, on success, creates a new session for accountID.
func (sm *SessionManager) Authenticate(accountID, presentedKey string) (string, error) {
	sm.mu.RLock()
	signingKey := sm.signingKey
	sm.mu.RUnlock()

	if signingKey == "" || !hmac.Equal([]byte(presentedKey), []byte(signingKey)) {
		return "", fmt.Errorf("unauthorized: invalid operator key")
	}

	return sm.CreateSession(accountID)
}

func (sm *SessionManager) CreateSession(accountID string) (string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sessionID := generateSessionID()

	sm.sessions[sessionID] = &OperatorSession{
		AccountID: accountID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(SessionDuration),
	}

	log.Printf("operator session created for %s", accountID)

	return sessionID, nil
}

func (sm *SessionManager) GetSession(sessionID string) *OperatorSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil
	}
	if time.Now().After(session.ExpiresAt) {
		return nil
	}
	return session
}

func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, sessionID)
}

// ValidateSession checks if a request carries a valid session cookie.
func (sm *SessionManager) ValidateSession(r *http.Request) *OperatorSession {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	sessionID, err := sm.decodeCookie(cookie.Value)
	if err != nil {
		return nil
	}

	return sm.GetSession(sessionID)
}

func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sm.encodeCookie(sessionID),
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: CookieHTTPOnly,
		Secure:   CookieSecure,
		SameSite: CookieSameSite,
	})
}

func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: CookieHTTPOnly,
		Secure:   CookieSecure,
		SameSite: CookieSameSite,
	})
}

func (sm *SessionManager) encodeCookie(sessionID string) string {
	mac := hmac.New(sha256.New, sm.secretKey)
	mac.Write([]byte(sessionID))
	signature := hex.EncodeToString(mac.Sum(nil))
	return base64.URLEncoding.EncodeToString([]byte(sessionID + "." + signature))
}

func (sm *SessionManager) decodeCookie(cookieValue string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(cookieValue)
	if err != nil {
		return "", fmt.Errorf("invalid cookie encoding")
	}

	parts := strings.SplitN(string(decoded), ".", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid cookie format")
	}

	sessionID, providedSig := parts[0], parts[1]

	mac := hmac.New(sha256.New, sm.secretKey)
	mac.Write([]byte(sessionID))
	expectedSig := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(providedSig), []byte(expectedSig)) {
		return "", fmt.Errorf("invalid cookie signature")
	}

	return sessionID, nil
}

func (sm *SessionManager) cleanupExpiredSessions() {
	ticker := time.NewTicker(10 * time.Minute)
	for range ticker.C {
		sm.mu.Lock()
		now := time.Now()
		for id, session := range sm.sessions {
			if now.After(session.ExpiresAt) {
				delete(sm.sessions, id)
			}
		}
		sm.mu.Unlock()
	}
}

func generateSessionID() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// AdminAuthMiddleware requires a valid operator session for the
// routes that create or schedule matches.
func (sm *SessionManager) AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sm.ValidateSession(r)
		if session == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   "unauthorized",
				"message": "operator authentication required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthStatus reports the current authentication status of a request.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	AccountID     string `json:"account_id,omitempty"`
	ExpiresAt     int64  `json:"expires_at,omitempty"`
}

func (sm *SessionManager) HandleAuthStatus(w http.ResponseWriter, r *http.Request) {
	session := sm.ValidateSession(r)

	status := AuthStatus{Authenticated: session != nil}
	if session != nil {
		status.AccountID = session.AccountID
		status.ExpiresAt = session.ExpiresAt.Unix()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (sm *SessionManager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"account_id"`
		Key       string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	sessionID, err := sm.Authenticate(req.AccountID, req.Key)
	if err != nil {
		writeError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	sm.SetSessionCookie(w, sessionID)
	writeJSON(w, map[string]bool{"success": true})
}

func (sm *SessionManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		if sessionID, err := sm.decodeCookie(cookie.Value); err == nil {
			sm.DeleteSession(sessionID)
		}
	}
	sm.ClearSessionCookie(w)
	writeJSON(w, map[string]bool{"success": true})
}
