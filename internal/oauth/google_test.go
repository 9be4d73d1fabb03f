package oauth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func stubVerifier(payload *idtoken.Payload, err error) *IDTokenVerifier {
	return &IDTokenVerifier{
		clientID: "client-123",
		validate: func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			if audience != "client-123" {
				return nil, errors.New("audience mismatch")
			}
			return payload, err
		},
	}
}

func TestVerify(t *testing.T) {
	t.Run("extracts identity claims", func(t *testing.T) {
		v := stubVerifier(&idtoken.Payload{
			Subject: "1098",
			Claims: map[string]interface{}{
				"email":          "ada@example.com",
				"email_verified": true,
				"name":           "Ada",
				"picture":        "https://example.com/ada.png",
			},
		}, nil)

		identity, err := v.Verify(context.Background(), "token")
		require.NoError(t, err)
		assert.Equal(t, "1098", identity.Subject)
		assert.Equal(t, "ada@example.com", identity.Email)
		assert.Equal(t, "Ada", identity.Name)
	})

	t.Run("rejects unverified email", func(t *testing.T) {
		v := stubVerifier(&idtoken.Payload{
			Subject: "1098",
			Claims:  map[string]interface{}{"email": "ada@example.com", "email_verified": false},
		}, nil)

		_, err := v.Verify(context.Background(), "token")
		assert.Error(t, err)
	})

	t.Run("rejects missing email", func(t *testing.T) {
		v := stubVerifier(&idtoken.Payload{Subject: "1098", Claims: map[string]interface{}{}}, nil)
		_, err := v.Verify(context.Background(), "token")
		assert.Error(t, err)
	})

	t.Run("propagates validation failure", func(t *testing.T) {
		v := stubVerifier(nil, errors.New("bad signature"))
		_, err := v.Verify(context.Background(), "token")
		assert.Error(t, err)
	})
}
