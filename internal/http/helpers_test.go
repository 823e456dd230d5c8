package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIntQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		want     int
		ok       bool
		wantCode int
	}{
		{"absent uses default", "/", 3, true, http.StatusOK},
		{"valid", "/?page=7", 7, true, http.StatusOK},
		{"zero", "/?page=0", 0, true, http.StatusOK},
		{"negative", "/?page=-1", 0, false, http.StatusBadRequest},
		{"not a number", "/?page=abc", 0, false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", tt.query, nil)

			got, ok := parseIntQuery(c, "page", 3)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRespondCoded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondCoded(c, http.StatusConflict, CodePending, "operation already in progress", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"operation already in progress","code":"pending"}`, w.Body.String())
}

func TestRespondInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondInternalError(c, assert.AnError, "test")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
