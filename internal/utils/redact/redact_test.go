package redact_test

import (
	"testing"

	"github.com/erpcore/ledger_governance/internal/utils/redact"
	"github.com/stretchr/testify/assert"
)

func TestIsSensitiveKey(t *testing.T) {
	assert.True(t, redact.IsSensitiveKey("password"))
	assert.True(t, redact.IsSensitiveKey("API_TOKEN"))
	assert.True(t, redact.IsSensitiveKey("idempotencyKey"))
	assert.True(t, redact.IsSensitiveKey("client_secret"))

	assert.False(t, redact.IsSensitiveKey("amount"))
	assert.False(t, redact.IsSensitiveKey("description"))
}

func TestMap(t *testing.T) {
	input := map[string]any{
		"amount":   "100.00",
		"password": "hunter2",
		"nested": map[string]any{
			"token": "abc",
			"note":  "fine",
		},
	}

	out := redact.Map(input)

	assert.Equal(t, "100.00", out["amount"])
	assert.Equal(t, redact.Placeholder, out["password"])
	nested := out["nested"].(map[string]any)
	assert.Equal(t, redact.Placeholder, nested["token"])
	assert.Equal(t, "fine", nested["note"])

	assert.Equal(t, "hunter2", input["password"], "input map is not mutated")
	assert.Nil(t, redact.Map(nil))
}
