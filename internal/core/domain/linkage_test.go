package domain_test

import (
	"testing"

	"github.com/erpcore/ledger_governance/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceRef(t *testing.T) {
	ref := domain.SourceRef{Module: "students", Model: "StudentFee", ID: "42"}

	assert.Equal(t, "students.StudentFee", ref.Qualified())
	assert.Equal(t, "students.StudentFee#42", ref.String())
	assert.True(t, ref.IsComplete())

	assert.False(t, domain.SourceRef{Module: "students", Model: "StudentFee"}.IsComplete())
	assert.False(t, domain.SourceRef{}.IsComplete())
}

func TestSourceRegistry_Lookup(t *testing.T) {
	registry, err := domain.NewSourceRegistry(domain.DefaultSourceDefinitions())
	require.NoError(t, err)

	def, ok := registry.Lookup("students", "StudentFee")
	require.True(t, ok)
	assert.Equal(t, "student_fees", def.Table)
	assert.Equal(t, "SF", def.Prefix)
	assert.True(t, def.Critical)

	def, ok = registry.Lookup("finance", "Payment")
	require.True(t, ok)
	assert.False(t, def.Critical)

	_, ok = registry.Lookup("hr", "StudentFee")
	assert.False(t, ok, "module/model pairing matters, not the parts alone")

	_, ok = registry.Lookup("core", "User")
	assert.False(t, ok)
}

func TestSourceRegistry_RejectsIncompleteDefinition(t *testing.T) {
	_, err := domain.NewSourceRegistry([]domain.SourceDefinition{
		{Module: "finance", Model: "Payment"},
	})
	assert.Error(t, err)
}
