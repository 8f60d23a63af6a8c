package apiErrors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		code           string
		expectedStatus int
		retryAfter     string
	}{
		{name: "Assinatura inválida", code: ErrInvalidSignature, expectedStatus: http.StatusUnauthorized},
		{name: "IP proibido", code: ErrForbiddenIP, expectedStatus: http.StatusForbidden},
		{name: "Campo inválido", code: ErrInvalidField, expectedStatus: http.StatusBadRequest},
		{name: "Bloqueio expirado", code: ErrLockTimeout, expectedStatus: http.StatusServiceUnavailable, retryAfter: "1"},
		{name: "Limite de requisições", code: ErrRateLimited, expectedStatus: http.StatusTooManyRequests, retryAfter: "1"},
		{name: "Código desconhecido", code: "XYZ_999", expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.code, "mensagem", map[string]any{"field": "x"})

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.retryAfter, rec.Header().Get("Retry-After"))

			var body APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, "mensagem", body.Message)
		})
	}
}

func TestFromError(t *testing.T) {
	assert.Equal(t, ErrInternalServer, FromError(nil, ErrInvalidRequest).Code)

	apiErr := FromError(errors.New("falhou"), ErrDatabaseOperation)
	assert.Equal(t, ErrDatabaseOperation, apiErr.Code)
	assert.Equal(t, "falhou", apiErr.Message)
}
