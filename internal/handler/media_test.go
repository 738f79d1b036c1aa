package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"prompthub/internal/transport/http/middleware"
)

func TestMediaHandler_PresignWithoutStorageConfigured(t *testing.T) {
	// The server runs without object storage; only the avatar endpoints
	// report the missing configuration.
	h := NewMediaHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/upload/avatar/presign",
		strings.NewReader(`{"fileName":"me.png","fileSize":1024,"fileType":"image/png"}`))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "user-1"))

	rec := httptest.NewRecorder()
	h.PresignAvatar(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body=%s", rec.Code, rec.Body.String())
	}
}
