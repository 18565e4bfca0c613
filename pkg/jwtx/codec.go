package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HS256 secret the codec accepts.
const MinSecretLength = 32

var (
	// ErrInvalid covers every verification failure other than expiry:
	// malformed tokens, bad signatures, wrong algorithm, missing claims.
	ErrInvalid = errors.New("jwtx: invalid token")

	// ErrExpired is returned for a correctly signed token whose exp has passed.
	ErrExpired = errors.New("jwtx: token expired")

	ErrInvalidClaim = errors.New("jwtx: invalid claims")
	ErrWeakSecret   = fmt.Errorf("jwtx: secret must be at least %d bytes", MinSecretLength)
)

// Codec issues and verifies HS256 tokens under a single shared secret.
type Codec struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// WithLeeway tolerates clock skew when checking exp and iat.
func WithLeeway(d time.Duration) CodecOption {
	return func(c *Codec) { c.leeway = d }
}

// NewCodec returns a Codec signing with secret. An empty issuer disables the
// issuer check.
func NewCodec(secret []byte, issuer string, opts ...CodecOption) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		issuer: issuer,
		now:    time.Now,
		// Claims are validated by hand after the signature check so that an
		// expired but forged token reports ErrInvalid, not ErrExpired.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue stamps claims with issuer, issued-at and expiry and signs them.
func (c *Codec) Issue(claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("jwtx: ttl must be positive, got %s", ttl)
	}

	now := c.now().UTC()
	claims.Issuer = c.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.ID == "" {
		claims.ID = NewJTI()
	}
	if err := claims.validateShape(); err != nil {
		return "", fmt.Errorf("jwtx: refusing to sign: %w", err)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and claims of token and requires it to be of
// type want. It returns ErrExpired or ErrInvalid (possibly wrapping detail).
func (c *Codec) Verify(token string, want TokenType) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalid)
	}

	var claims Claims
	if _, err := c.parser.ParseWithClaims(token, &claims, c.key); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := claims.validateShape(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrInvalid)
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: expected %s token, got %s", ErrInvalid, want, claims.Type)
	}

	if err := claims.validateTiming(c.now().UTC(), c.leeway); err != nil {
		if errors.Is(err, ErrExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return &claims, nil
}

func (c *Codec) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return c.secret, nil
}
