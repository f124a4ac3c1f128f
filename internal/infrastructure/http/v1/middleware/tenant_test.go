package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/internal/core/apperror"
	"valora/internal/core/tenant"
)

func TestPoolError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unknown tenant",
			err:        fmt.Errorf("lookup: %w", tenant.ErrTenantNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "suspended tenant",
			err:        fmt.Errorf("%w: status=suspended", tenant.ErrTenantNotActive),
			wantStatus: http.StatusForbidden,
			wantMsg:    "tenant is not active",
		},
		{
			name:       "pool manager at capacity",
			err:        fmt.Errorf("%w (10)", tenant.ErrMaxPoolLimit),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "service temporarily unavailable",
		},
		{
			name:       "unexpected failure",
			err:        errors.New("dial tcp: timeout"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := poolError(tt.err, "11111111-2222-3333-4444-555555555555")

			var appErr *apperror.AppError
			require.ErrorAs(t, mapped, &appErr)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, appErr.Message)
			}
		})
	}
}
