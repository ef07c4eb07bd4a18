package types

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       AuditRequest
		wantField string
	}{
		{name: "valid minimal", req: AuditRequest{BusinessName: "Joe's Pizza", Location: "Austin, TX"}},
		{name: "valid full", req: AuditRequest{BusinessName: "Joe's Pizza", Location: "Austin", Category: "Restaurant", ContactName: "Joe"}},
		{name: "missing name", req: AuditRequest{Location: "Austin"}, wantField: "BusinessName"},
		{name: "blank name", req: AuditRequest{BusinessName: "   ", Location: "Austin"}, wantField: "BusinessName"},
		{name: "missing location", req: AuditRequest{BusinessName: "Joe's"}, wantField: "Location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.wantField, verrs[0].Field())
		})
	}
}

func TestAuditRequest_NormalizeTrims(t *testing.T) {
	req := AuditRequest{BusinessName: "  Acme ", Location: "\tParis\n", Category: " ", ContactName: " Ann "}
	req.Normalize()

	assert.Equal(t, "Acme", req.BusinessName)
	assert.Equal(t, "Paris", req.Location)
	assert.Equal(t, "", req.Category)
	assert.Equal(t, "Ann", req.ContactName)
}

func TestPreferences_MaskedAPIKey(t *testing.T) {
	assert.Equal(t, "", Preferences{}.MaskedAPIKey())
	assert.Equal(t, "***", Preferences{APIKey: "abc"}.MaskedAPIKey())
	assert.Equal(t, "******7890", Preferences{APIKey: "1234567890"}.MaskedAPIKey())
}
