package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/erp/zidsync/internal/interfaces/http/dto"
)

func TestSystemInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewSystemHandler("1.2.3").RegisterRoutes(router.Group(""))

	req := httptest.NewRequest(http.MethodGet, "/system/info", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "Zid Sync API", data["name"])
	assert.Equal(t, "1.2.3", data["version"])
}

func TestSystemPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewSystemHandler("dev").RegisterRoutes(router.Group(""))

	req := httptest.NewRequest(http.MethodGet, "/system/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pong", resp.Data)
}
