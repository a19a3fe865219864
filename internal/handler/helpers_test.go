package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal-api/internal/middleware"
	"github.com/noah-isme/campus-portal-api/internal/models"
)

type responseEnvelope struct {
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Error   map[string]interface{} `json:"error"`
	Meta    map[string]interface{} `json:"meta"`
}

func newTestContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var payload *bytes.Buffer
	switch b := body.(type) {
	case nil:
		payload = &bytes.Buffer{}
	case string:
		payload = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		payload = bytes.NewBuffer(raw)
	}
	c.Request = httptest.NewRequest(method, target, payload)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func withClaims(c *gin.Context, role models.UserRole, username string) *models.JWTClaims {
	claims := &models.JWTClaims{UserID: "u-" + username, Username: username, Role: role, Name: username}
	c.Set(middleware.ContextUserKey, claims)
	return claims
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func errorCode(envelope responseEnvelope) string {
	if envelope.Error == nil {
		return ""
	}
	code, _ := envelope.Error["code"].(string)
	return code
}

