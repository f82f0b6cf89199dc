package googleid_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"testing"
	"time"

	"github.com/kopisahaja/kopisahaja/pkg/googleid"
	"github.com/kopisahaja/kopisahaja/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedTransport struct {
	status int
	body   string
	req    *gohttp.Request // last request seen
}

func (t *cannedTransport) RoundTrip(req *gohttp.Request) (*gohttp.Response, error) {
	t.req = req
	return &gohttp.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(bytes.NewBufferString(t.body)),
		Header:     make(gohttp.Header),
	}, nil
}

func install(t *testing.T, status int, body string) *cannedTransport {
	t.Helper()
	ct := &cannedTransport{status: status, body: body}
	http.DefaultClient.Transport = ct
	t.Cleanup(http.ResetTransport)
	return ct
}

func tokeninfo(aud string, exp int64) string {
	return fmt.Sprintf(`{
		"sub":"g-123","email":"siti@example.com",
		"given_name":"Siti","family_name":"Rahma",
		"picture":"https://pics/siti.png",
		"aud":%q,"exp":"%d"
	}`, aud, exp)
}

func TestVerify(t *testing.T) {
	install(t, 200, tokeninfo("client-1", time.Now().Add(time.Hour).Unix()))

	id, err := googleid.Verify(context.Background(), "credential", "client-1")
	require.NoError(t, err)
	assert.Equal(t, "g-123", id.Sub)
	assert.Equal(t, "siti@example.com", id.Email)
	assert.Equal(t, "Siti", id.GivenName)
	assert.Equal(t, "Rahma", id.FamilyName)
}

func TestVerifyRejects(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"wrong audience", 200, tokeninfo("someone-else", future)},
		{"expired", 200, tokeninfo("client-1", time.Now().Add(-time.Minute).Unix())},
		{"rejected by google", 400, `{"error":"invalid_token"}`},
		{"missing sub", 200, `{"email":"x@example.com","aud":"client-1","exp":"9999999999"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			install(t, tt.status, tt.body)
			_, err := googleid.Verify(context.Background(), "credential", "client-1")
			assert.ErrorIs(t, err, googleid.ErrInvalidToken)
		})
	}
}

func TestVerifyEscapesCredential(t *testing.T) {
	ct := install(t, 200, tokeninfo("client-1", time.Now().Add(time.Hour).Unix()))

	// JWT-shaped credential with characters that are significant in a query
	// string. It must arrive intact as the id_token parameter.
	credential := "eyJh+bGci/OiJSUzI1NiJ9==&scope=evil"
	_, err := googleid.Verify(context.Background(), credential, "client-1")
	require.NoError(t, err)

	require.NotNil(t, ct.req)
	assert.Equal(t, "id_token="+url.QueryEscape(credential), ct.req.URL.RawQuery)
	assert.Equal(t, credential, ct.req.URL.Query().Get("id_token"))
	assert.Empty(t, ct.req.URL.Query().Get("scope"))
}

func TestVerifyEmptyInputs(t *testing.T) {
	_, err := googleid.Verify(context.Background(), "", "client-1")
	assert.ErrorIs(t, err, googleid.ErrInvalidToken)
	_, err = googleid.Verify(context.Background(), "credential", "")
	assert.ErrorIs(t, err, googleid.ErrInvalidToken)
}
