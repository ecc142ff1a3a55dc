package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easiarr/easiarr/internal/config"
)

func TestAssembleDerivesTraefikAndVPNToggles(t *testing.T) {
	t.Parallel()

	m := NewSettings(config.Defaults())
	m.inputs[fieldDomain].SetValue("media.example.com")
	m.inputs[fieldEmail].SetValue("ops@example.com")
	m.inputs[fieldWireguard].SetValue("wg-private-key")
	m.inputs[fieldProvider].SetValue("mullvad")

	s, err := m.assemble()
	require.NoError(t, err)
	assert.True(t, s.Traefik.Enabled)
	assert.Equal(t, "media.example.com", s.Traefik.Domain)
	assert.True(t, s.VPN.Enabled)
	assert.Equal(t, "mullvad", s.VPN.Provider)
}

func TestAssembleEmptyDomainDisablesTraefik(t *testing.T) {
	t.Parallel()

	base := config.Defaults()
	base.Traefik.Enabled = true
	base.Traefik.Domain = "old.example.com"

	m := NewSettings(base)
	m.inputs[fieldDomain].SetValue("")

	s, err := m.assemble()
	require.NoError(t, err)
	assert.False(t, s.Traefik.Enabled)
	assert.Empty(t, s.Traefik.Domain)
}

func TestAssembleTrimsWhitespace(t *testing.T) {
	t.Parallel()

	m := NewSettings(config.Defaults())
	m.inputs[fieldRoot].SetValue("  ~/stack  ")
	m.inputs[fieldTimezone].SetValue(" Europe/Berlin ")

	s, err := m.assemble()
	require.NoError(t, err)
	assert.Equal(t, "~/stack", s.RootDir)
	assert.Equal(t, "Europe/Berlin", s.Timezone)
}

func TestAssembleRejectsBadPUID(t *testing.T) {
	t.Parallel()

	m := NewSettings(config.Defaults())
	m.inputs[fieldPUID].SetValue("abc")

	_, err := m.assemble()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "puid")
}

func TestAssembleRejectsEmptyRoot(t *testing.T) {
	t.Parallel()

	m := NewSettings(config.Defaults())
	m.inputs[fieldRoot].SetValue("")

	_, err := m.assemble()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stack directory")
}
