package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

var errNotAuthenticated = errors.New("not authenticated")

// Sessions mints and verifies the HS256 session tokens carried in cookies.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// NewSessions creates a session authority from the configured secret and TTL.
func NewSessions(secret []byte, ttl time.Duration) *Sessions {
	if len(secret) == 0 {
		panic("api.NewSessions: secret is required")
	}
	if ttl <= 0 {
		panic("api.NewSessions: ttl must be positive")
	}
	return &Sessions{
		secret: secret,
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// Issue returns a session cookie for the given user.
func (s *Sessions) Issue(userID int64) (*http.Cookie, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Clear returns a cookie that removes the session.
func (s *Sessions) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// UserID extracts the authenticated user from the request's session cookie.
// All verification failures collapse into errNotAuthenticated so callers leak
// nothing about why a session was rejected.
func (s *Sessions) UserID(r *http.Request) (int64, error) {
	ck, err := r.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return 0, errNotAuthenticated
	}

	token, err := s.parser.Parse(ck.Value, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errNotAuthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errNotAuthenticated
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return 0, errNotAuthenticated
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return 0, errNotAuthenticated
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, errNotAuthenticated
	}
	return id, nil
}
