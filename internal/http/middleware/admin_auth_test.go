package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func adminToken(t *testing.T, secret string, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "ops@dosewise.io",
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doAdminRequest(t *testing.T, secret, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var subject string
	handler := AdminJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = AdminSubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/jobs/j1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, subject
}

func TestAdminJWTRejections(t *testing.T) {
	future := time.Now().Add(5 * time.Minute)
	tests := []struct {
		name   string
		secret string
		header string
	}{
		{"empty secret disables access", "", "Bearer " + adminToken(t, "secret", future)},
		{"missing header", "secret", ""},
		{"not a bearer header", "secret", "Basic abc"},
		{"wrong signing key", "secret", "Bearer " + adminToken(t, "other-secret", future)},
		{"expired token", "secret", "Bearer " + adminToken(t, "secret", time.Now().Add(-time.Minute))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doAdminRequest(t, tt.secret, tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAdminJWTValidTokenExposesSubject(t *testing.T) {
	rec, subject := doAdminRequest(t, "secret", "Bearer "+adminToken(t, "secret", time.Now().Add(5*time.Minute)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if subject != "ops@dosewise.io" {
		t.Errorf("subject = %q, want ops@dosewise.io", subject)
	}
}
