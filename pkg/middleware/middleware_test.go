package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/library-management/pkg/auth"
	md "github.com/Astemirdum/library-management/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestRequireRoles(t *testing.T) {
	t.Parallel()
	tm := auth.NewTokenManager("test-secret", time.Hour)
	admin, err := tm.Issue(1, auth.RoleAdmin)
	require.NoError(t, err)
	librarian, err := tm.Issue(2, auth.RoleLibrarian)
	require.NoError(t, err)
	student, err := tm.Issue(3, auth.Role("student"))
	require.NoError(t, err)
	rotated, err := auth.NewTokenManager("other-secret", time.Hour).Issue(1, auth.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "no header",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"No Authorization Header"}`,
		},
		{
			name:         "no token segment",
			header:       "Bearer",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"Invalid Authorization Header"}`,
		},
		{
			name:         "bad signature",
			header:       "Bearer " + rotated,
			expectedCode: http.StatusForbidden,
			expectedBody: `{"message":"invalid token","error":"token signature is invalid: signature is invalid"}`,
		},
		{
			name:         "role not allowed",
			header:       "Bearer " + librarian,
			expectedCode: http.StatusForbidden,
			expectedBody: `{"message":"access denied","role":"liberian","required":["admin"]}`,
		},
		{
			name:         "role outside enumeration",
			header:       "Bearer " + student,
			expectedCode: http.StatusForbidden,
			expectedBody: `{"message":"access denied","role":"student","required":["admin"]}`,
		},
		{
			name:         "ok",
			header:       "Bearer " + admin,
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1,"role":"admin"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.GET("/private", func(c echo.Context) error {
				id, _ := auth.FromContext(c.Request().Context())
				return c.JSON(http.StatusOK, id)
			}, md.RequireRoles(tm, auth.RoleAdmin))

			r := httptest.NewRequest(http.MethodGet, "/private", http.NoBody)
			if tt.header != "" {
				r.Header.Set(auth.AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
