package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name string `json:"name" validate:"required,max=5"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"abc"}`},
		{name: "unknown field", body: `{"name":"abc","extra":true}`, wantErr: true},
		{name: "trailing data", body: `{"name":"abc"} {"name":"def"}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", MaxRequestBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v sampleRequest
			err := DecodeJSON(req, &v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "abc", v.Name)
		})
	}
}

func TestValidateRequestUsesJSONNames(t *testing.T) {
	err := ValidateRequest(&sampleRequest{Name: "toolong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'name'")
}
