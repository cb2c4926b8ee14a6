package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/sophiemoustard/compani-api-sub005/internal/middleware"
	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

var adminClaims = &models.JWTClaims{UserID: "admin", VendorRole: models.VendorRoleAdmin}

func newTestContext(method, target, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	if claims != nil {
		middleware.SetActor(c, claims)
	}
	return c, w
}
