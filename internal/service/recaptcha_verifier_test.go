package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecaptchaVerifier_Disabled(t *testing.T) {
	v := NewRecaptchaVerifier("", "http://unused", http.DefaultClient, zerolog.Nop())
	assert.False(t, v.Enabled())
}

func TestRecaptchaVerifier_Success(t *testing.T) {
	var gotToken, gotRemoteIP string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotToken = r.PostFormValue("response")
		gotRemoteIP = r.PostFormValue("remoteip")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	v := NewRecaptchaVerifier("secret", srv.URL, http.DefaultClient, zerolog.Nop())
	assert.True(t, v.Enabled())

	err := v.Verify(context.Background(), "tok-123", "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", gotToken)
	assert.Equal(t, "203.0.113.9", gotRemoteIP)
}

func TestRecaptchaVerifier_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := NewRecaptchaVerifier("secret", srv.URL, http.DefaultClient, zerolog.Nop())
	err := v.Verify(context.Background(), "bad-token", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid-input-response")
}

func TestRecaptchaVerifier_TransportError(t *testing.T) {
	v := NewRecaptchaVerifier("secret", "http://127.0.0.1:1", http.DefaultClient, zerolog.Nop())
	err := v.Verify(context.Background(), "token", "")
	assert.Error(t, err)
}

func TestRecaptchaVerifier_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	v := NewRecaptchaVerifier("secret", srv.URL, http.DefaultClient, zerolog.Nop())
	err := v.Verify(ctx, "token", "")
	assert.Error(t, err)
}
