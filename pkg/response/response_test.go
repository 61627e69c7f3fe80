package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robavelii/FusionForms/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func TestOK_Envelope(t *testing.T) {
	c, w := newTestContext()
	OK(c, gin.H{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["request_id"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, "world", body["data"].(map[string]interface{})["hello"])
}

func TestSubmitted_Body(t *testing.T) {
	c, w := newTestContext()
	id := uuid.New()
	Submitted(c, id)

	assert.Equal(t, http.StatusCreated, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, id.String(), body["submission_id"])
}

func TestError_FieldLevelRejection(t *testing.T) {
	c, w := newTestContext()
	Error(c, apperror.ErrInvalidData("field \"q1\" is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, `Invalid data: field "q1" is required`, body["data"])
	_, hasCode := body["error_code"]
	assert.False(t, hasCode)
}

func TestError_AppErrorEnvelope(t *testing.T) {
	c, w := newTestContext()
	Error(c, apperror.ErrFormNotFound())

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FORM_001", body.ErrorCode)
	assert.Equal(t, "Form not found", body.Message)
}

func TestError_UnknownError(t *testing.T) {
	c, w := newTestContext()
	Error(c, errors.New("something broke"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SYS_000", body.ErrorCode)
	assert.Equal(t, "Internal server error", body.Message)
}
