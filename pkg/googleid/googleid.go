// Package googleid verifies Google Sign-In ID tokens against Google's
// tokeninfo endpoint and checks them for this application's client id.
package googleid

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kopisahaja/kopisahaja/pkg/http"
)

const tokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"

// ErrInvalidToken covers every verification failure so callers can map it
// to a single 401 without leaking which check tripped.
var ErrInvalidToken = fmt.Errorf("googleid: invalid token")

// Identity is the verified subset of the ID token payload.
type Identity struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Audience   string `json:"aud"`
	Expiry     string `json:"exp"`
}

// Verify checks credential with Google and validates audience and expiry.
func Verify(ctx context.Context, credential, clientID string) (*Identity, error) {
	if credential == "" || clientID == "" {
		return nil, ErrInvalidToken
	}

	resp, err := http.Get(tokeninfoURL+"?id_token="+url.QueryEscape(credential)).
		WithContext(ctx).
		Timeout(10*time.Second).
		Retry(2, 500*time.Millisecond).
		Send()
	if err != nil {
		return nil, fmt.Errorf("googleid: tokeninfo: %w", err)
	}
	if !resp.OK() {
		return nil, ErrInvalidToken
	}

	var id Identity
	if err := resp.JSON(&id); err != nil {
		return nil, fmt.Errorf("googleid: decode tokeninfo: %w", err)
	}

	if id.Audience != clientID || id.Sub == "" || id.Email == "" {
		return nil, ErrInvalidToken
	}

	exp, err := strconv.ParseInt(id.Expiry, 10, 64)
	if err != nil || time.Now().Unix() >= exp {
		return nil, ErrInvalidToken
	}

	return &id, nil
}
