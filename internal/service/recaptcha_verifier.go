package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// recaptchaTimeout bounds the round trip to the verification endpoint. A
// slow verifier must not hold the submission request open indefinitely.
const recaptchaTimeout = 5 * time.Second

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RecaptchaVerifier implements ports.ChallengeVerifier against Google's
// siteverify endpoint. With no secret configured, verification is disabled
// and submissions skip the challenge step entirely.
type RecaptchaVerifier struct {
	secret    string
	verifyURL string
	client    HTTPClient
	log       zerolog.Logger
}

// NewRecaptchaVerifier creates a new reCAPTCHA verifier.
func NewRecaptchaVerifier(secret, verifyURL string, client HTTPClient, log zerolog.Logger) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secret:    secret,
		verifyURL: verifyURL,
		client:    client,
		log:       log,
	}
}

// Enabled reports whether a verification secret is configured.
func (v *RecaptchaVerifier) Enabled() bool {
	return v.secret != ""
}

// recaptchaResponse is the verification endpoint's verdict document.
type recaptchaResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token to the verification endpoint and checks the
// verdict. Transport errors and timeouts are rejections, not passes.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string, remoteIP string) error {
	ctx, cancel := context.WithTimeout(ctx, recaptchaTimeout)
	defer cancel()

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("verification request: %w", err)
	}
	defer resp.Body.Close()

	var verdict recaptchaResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return fmt.Errorf("decoding verification response: %w", err)
	}

	if !verdict.Success {
		v.log.Debug().Strs("error_codes", verdict.ErrorCodes).Msg("recaptcha rejected token")
		return fmt.Errorf("verification rejected: %s", strings.Join(verdict.ErrorCodes, ","))
	}

	return nil
}
