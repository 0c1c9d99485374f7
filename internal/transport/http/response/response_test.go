package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorded(t *testing.T, write func(c *gin.Context)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	write(c)
	return w
}

func TestEnvelopeCodes(t *testing.T) {
	w := recorded(t, func(c *gin.Context) { OK(c, gin.H{"app": "stocksage"}) })
	var ok APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CodeOK, ok.Code)

	w = recorded(t, func(c *gin.Context) { Error(c, http.StatusNotFound, CodeNotFound, "route not found") })
	var missing APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &missing))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, missing.Code)
	assert.Nil(t, missing.Data)

	w = recorded(t, func(c *gin.Context) {
		WithData(c, http.StatusServiceUnavailable, CodeServiceUnavailable, "degraded", gin.H{"mysql": false})
	})
	var degraded APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &degraded))
	assert.Equal(t, CodeServiceUnavailable, degraded.Code)
	assert.Equal(t, "degraded", degraded.Message)
	assert.NotNil(t, degraded.Data)
}

func TestFail_FlatBody(t *testing.T) {
	w := recorded(t, func(c *gin.Context) { Fail(c, http.StatusBadRequest, "Share ID is required") })
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Share ID is required"}`, w.Body.String())
}
