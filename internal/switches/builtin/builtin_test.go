package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/hil/internal/domain"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry([]string{"dell", "mock", "composite"})
	require.NoError(t, err)
	assert.Equal(t, []domain.SwitchType{
		domain.SwitchTypeComposite,
		domain.SwitchTypeDell,
		domain.SwitchTypeMock,
	}, r.Types())

	_, err = r.Driver(domain.SwitchTypeNexus)
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	_, err = NewRegistry([]string{"juniper"})
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	_, err = NewRegistry(nil)
	assert.ErrorIs(t, err, domain.ErrBadArgument)
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown("nexus"))
	assert.False(t, IsKnown("juniper"))
}
