package session

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Cookie names. The stash cookie is deliberately separate from the session
// cookie so that stashing the original token during delegation never
// touches the active session slot.
const (
	SessionCookie = "vestibule_session"
	StashCookie   = "vestibule_stash"
)

// StashTTL bounds how long a stashed original token survives. It matches a
// typical session lifetime.
const StashTTL = 4 * time.Hour

// Codec encodes session state into an HS256-signed token carried by the
// session cookie, and writes the session and stash cookies with a uniform
// attribute set (HttpOnly, Secure, SameSite=Lax, Path=/).
type Codec struct {
	secret []byte
	ttl    time.Duration
	secure bool
	domain string
}

// CodecConfig holds the codec settings.
type CodecConfig struct {
	// Secret signs session cookies. Required.
	Secret string

	// TTL is the session cookie lifetime. Default: 4 hours.
	TTL time.Duration

	// Secure controls the cookie Secure attribute. Default true; disable
	// only for plain-HTTP local development.
	Secure bool

	// Domain is the optional cookie domain.
	Domain string
}

// NewCodec creates a session codec.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if cfg.TTL == 0 {
		cfg.TTL = 4 * time.Hour
	}
	return &Codec{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		secure: cfg.Secure,
		domain: cfg.Domain,
	}, nil
}

// sessionClaims is the signed cookie payload.
type sessionClaims struct {
	AccessToken string `json:"access_token,omitempty"`
	TenantID    string `json:"tenant_id,omitempty"`
	User        *User  `json:"user,omitempty"`
	jwtlib.RegisteredClaims
}

// Encode signs the session context into a cookie value.
func (c *Codec) Encode(sc *Context) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		AccessToken: sc.AccessToken,
		TenantID:    sc.TenantID,
		User:        sc.User,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing session: %w", err)
	}
	return signed, nil
}

// Decode verifies a cookie value and reconstructs the session context.
// Invalid, expired, or tampered values return an error; callers treat that
// as an anonymous session rather than a request failure.
func (c *Codec) Decode(value string) (*Context, error) {
	var claims sessionClaims
	token, err := jwtlib.ParseWithClaims(value, &claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("invalid session cookie: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session cookie")
	}

	sc := &Context{
		AccessToken: claims.AccessToken,
		TenantID:    claims.TenantID,
		User:        claims.User,
	}

	// A half-present credential pair is a protocol violation. Downgrade to
	// anonymous rather than trusting either half.
	if (sc.AccessToken == "") != (sc.TenantID == "") {
		return nil, fmt.Errorf("session cookie carries partial credentials")
	}

	return sc, nil
}

// Resolve reads the session cookie from a request and decodes it. Any
// failure yields an anonymous context; session resolution never fails a
// request on its own.
func (c *Codec) Resolve(r *http.Request) *Context {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return &Context{}
	}
	sc, err := c.Decode(cookie.Value)
	if err != nil {
		slog.Debug("discarding unusable session cookie", "error", err)
		return &Context{}
	}
	return sc
}

// WriteSession sets the session cookie to the encoded context.
func (c *Codec) WriteSession(w http.ResponseWriter, sc *Context) error {
	value, err := c.Encode(sc)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(SessionCookie, value, int(c.ttl.Seconds())))
	return nil
}

// ClearSession deletes the session cookie.
func (c *Codec) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(SessionCookie, "", -1))
}

// WriteStash stores the original access token in the stash cookie for the
// duration of a delegation.
func (c *Codec) WriteStash(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(StashCookie, token, int(StashTTL.Seconds())))
}

// ReadStash returns the stashed original token, if any.
func (c *Codec) ReadStash(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(StashCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// ClearStash deletes the stash cookie.
func (c *Codec) ClearStash(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(StashCookie, "", -1))
}

// cookie builds a cookie with the uniform attribute set.
func (c *Codec) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
