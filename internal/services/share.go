package services

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/soaringjerry/tuneup/internal/catalog"
)

// ShareParam and SigParam are the query parameters of a share link.
const (
	ShareParam = "s"
	SigParam   = "sig"
)

type sharePayload struct {
	Founder              Founder           `json:"founder"`
	Scores               DualScores        `json:"scores"`
	Labels               map[string]string `json:"labels"`
	CategoryLabels       map[string]string `json:"categoryLabels"`
	CategoryDescriptions map[string]string `json:"categoryDescriptions"`
}

// EncodeShareToken serializes the shareable part of s as unpadded base64url JSON.
func EncodeShareToken(s State) (string, error) {
	data, err := json.Marshal(sharePayload{
		Founder:              s.Founder,
		Scores:               s.Scores,
		Labels:               s.Labels,
		CategoryLabels:       s.CategoryLabels,
		CategoryDescriptions: s.CategoryDescriptions,
	})
	if err != nil {
		return "", fmt.Errorf("encode share payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeShareToken reverses EncodeShareToken and sanitizes the payload.
// Padding and the standard base64 alphabet are tolerated.
func DecodeShareToken(token string, cat *catalog.Catalog) (State, error) {
	normalized := strings.NewReplacer("+", "-", "/", "_").Replace(strings.TrimRight(strings.TrimSpace(token), "="))
	if normalized == "" {
		return State{}, ErrShareTokenInvalid
	}
	data, err := base64.RawURLEncoding.DecodeString(normalized)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrShareTokenInvalid, err)
	}
	s, err := SanitizeShared(data, cat)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrShareTokenInvalid, err)
	}
	return s, nil
}

// ShareURL builds a share link on base carrying token and, when set, sig.
func ShareURL(base, token, sig string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set(ShareParam, token)
	if sig != "" {
		q.Set(SigParam, sig)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type shareClaims struct {
	Digest string `json:"dig"`
	jwt.RegisteredClaims
}

// ShareSigner produces tamper-evident signatures for share tokens.
type ShareSigner struct {
	key []byte
	now func() time.Time
}

// NewShareSigner derives an HS256 key from secret. It returns nil for an empty secret.
func NewShareSigner(secret string) (*ShareSigner, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, nil
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), []byte("tuneup"), []byte("share-link-signature"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive share key: %w", err)
	}
	return &ShareSigner{key: key, now: time.Now}, nil
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Sign returns a compact JWT over the token digest.
func (s *ShareSigner) Sign(token string) (string, error) {
	claims := shareClaims{
		Digest:           tokenDigest(token),
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(s.now())},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign share token: %w", err)
	}
	return signed, nil
}

// Verify returns ErrShareTokenInvalid unless sig was issued for token.
func (s *ShareSigner) Verify(token, sig string) error {
	var claims shareClaims
	_, err := jwt.ParseWithClaims(sig, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShareTokenInvalid, err)
	}
	if claims.Digest != tokenDigest(token) {
		return fmt.Errorf("%w: signature does not match token", ErrShareTokenInvalid)
	}
	return nil
}
