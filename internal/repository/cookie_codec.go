package repository

import (
	"fmt"

	"github.com/alexanderramin/labdesk/internal/domain"
	"github.com/gorilla/securecookie"
)

const cookieCodecName = "labdesk-session"

// CookieCodec signs (and, with a block key, encrypts) the cookie set before
// it is written to disk.
type CookieCodec struct {
	sc *securecookie.SecureCookie
}

// NewCookieCodec builds a codec from a hash key and an optional block key.
func NewCookieCodec(hashKey, blockKey []byte) (*CookieCodec, error) {
	if len(hashKey) == 0 {
		return nil, fmt.Errorf("cookie codec: hash key is required")
	}
	switch len(blockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("cookie codec: block key must be 16, 24 or 32 bytes, got %d", len(blockKey))
	}
	sc := securecookie.New(hashKey, blockKey).
		MaxAge(0).
		MaxLength(0).
		SetSerializer(securecookie.JSONEncoder{})
	return &CookieCodec{sc: sc}, nil
}

func (c *CookieCodec) Encode(cookies []domain.Cookie) (string, error) {
	if cookies == nil {
		cookies = []domain.Cookie{}
	}
	s, err := c.sc.Encode(cookieCodecName, cookies)
	if err != nil {
		return "", fmt.Errorf("encoding cookies: %w", err)
	}
	return s, nil
}

func (c *CookieCodec) Decode(value string) ([]domain.Cookie, error) {
	var cookies []domain.Cookie
	if err := c.sc.Decode(cookieCodecName, value, &cookies); err != nil {
		return nil, fmt.Errorf("decoding cookies: %w", err)
	}
	return cookies, nil
}
