package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"prompthub/internal/service"
)

type dupEmailUserRepository struct{ stubUserRepository }

func (r *dupEmailUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return true, nil
}

func TestAuthHandler_RegisterDuplicateEmailIsBadRequest(t *testing.T) {
	svc := service.NewUserService(&dupEmailUserRepository{})
	h := NewAuthHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"taken@example.com","password":"password123"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %s", rec.Body.String())
	}
	if body.Code != "EMAIL_EXISTS" {
		t.Errorf("code = %q, want EMAIL_EXISTS", body.Code)
	}
}
