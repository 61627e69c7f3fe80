package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentSubmissions fires many concurrent public submissions against
// one form and verifies the counter ends exactly equal to the number of
// accepted submissions: the increment runs inside the submission-insert
// transaction as a single atomic statement, never a read-modify-write.
func TestConcurrentSubmissions(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app, "concurrent_owner")
	formID := createForm(t, app, token, `{"title":"Load test"}`)

	// Publish
	req, _ := http.NewRequest("POST", app.server.URL+"/api/v1/forms/"+formID+"/publish", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	// Stay under the per-IP submission rate limit (60/min)
	concurrency := 50

	var wg sync.WaitGroup
	var successCount atomic.Int64
	var failCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			body := fmt.Sprintf(`{"data":{"n":%d}}`, idx)
			r, err := http.Post(app.server.URL+"/api/v1/public/forms/"+formID+"/submissions", "application/json", bytes.NewBufferString(body))
			if err != nil {
				failCount.Add(1)
				return
			}
			defer r.Body.Close()
			_, _ = io.ReadAll(r.Body)

			if r.StatusCode == 201 {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	t.Logf("Concurrent submissions: %d succeeded, %d failed (out of %d)", successCount.Load(), failCount.Load(), concurrency)
	require.Equal(t, int64(concurrency), successCount.Load(), "all submissions should be accepted")

	// Counter matches accepted submissions exactly
	req, _ = http.NewRequest("GET", app.server.URL+"/api/v1/forms/"+formID+"/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)

	var analyticsResult struct {
		Data struct {
			Views       int64 `json:"views"`
			Submissions int64 `json:"submissions"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analyticsResult))
	resp.Body.Close()

	assert.Equal(t, int64(concurrency), analyticsResult.Data.Submissions)

	// Every stored submission is readable back
	req, _ = http.NewRequest("GET", app.server.URL+"/api/v1/forms/"+formID+"/submissions?limit=100", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)

	var listResult struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listResult))
	resp.Body.Close()

	assert.Len(t, listResult.Data, concurrency)
}

// TestConcurrentViews exercises the view counter outside the submission
// transaction path.
func TestConcurrentViews(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app, "view_owner")
	formID := createForm(t, app, token, `{"title":"Popular"}`)

	concurrency := 30
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := http.Post(app.server.URL+"/api/v1/public/forms/"+formID+"/view", "application/json", nil)
			if err != nil {
				return
			}
			r.Body.Close()
		}()
	}
	wg.Wait()

	req, _ := http.NewRequest("GET", app.server.URL+"/api/v1/forms/"+formID+"/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var analyticsResult struct {
		Data struct {
			Views int64 `json:"views"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analyticsResult))
	resp.Body.Close()

	assert.Equal(t, int64(concurrency), analyticsResult.Data.Views)
}
