package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePortalsFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portals.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadPortals_AppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writePortalsFile(t, `
portals:
  - name: Vergabeportal Graz
    url: https://vergabe.graz.test
`)

	portals, err := LoadPortals(path)
	require.NoError(t, err)
	require.Len(t, portals, 1)

	p := portals[0]
	require.Equal(t, "vergabeportal_graz", p.Key)
	require.Equal(t, "generic", p.Adapter)
	require.True(t, p.IsEnabled())
	require.Empty(t, p.Criteria)
}

func TestLoadPortals_MergesGlobalKeywords(t *testing.T) {
	t.Parallel()

	path := writePortalsFile(t, `
global_keywords: Sanierung, Neubau
portals:
  - name: Tender24
    url: https://tender24.test
    adapter: tender24
    criteria: Dach, Fassade
  - name: Ohne Kriterien
    url: https://ohne.test
`)

	portals, err := LoadPortals(path)
	require.NoError(t, err)
	require.Len(t, portals, 2)
	require.Equal(t, "Dach, Fassade, Sanierung, Neubau", portals[0].Criteria)
	require.Equal(t, "Sanierung, Neubau", portals[1].Criteria)
	require.Equal(t, "tender24", portals[0].Adapter)
}

func TestLoadPortals_ExplicitDisableSticks(t *testing.T) {
	t.Parallel()

	path := writePortalsFile(t, `
portals:
  - name: Altportal
    url: https://alt.test
    enabled: false
  - name: Aktiv
    url: https://aktiv.test
    enabled: true
`)

	portals, err := LoadPortals(path)
	require.NoError(t, err)
	require.False(t, portals[0].IsEnabled())
	require.True(t, portals[1].IsEnabled())
}

func TestLoadPortals_MissingURLRejected(t *testing.T) {
	t.Parallel()

	path := writePortalsFile(t, `
portals:
  - name: Kaputt
`)

	_, err := LoadPortals(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing url")
}

func TestLoadPortals_SelectorOverrides(t *testing.T) {
	t.Parallel()

	path := writePortalsFile(t, `
portals:
  - name: Eigenbau
    url: https://eigenbau.test
    fallback_deadline_days: 7
    selectors:
      username: "#login-user"
      tender_list: ".eintrag"
`)

	portals, err := LoadPortals(path)
	require.NoError(t, err)
	p := portals[0]
	require.Equal(t, 7, p.FallbackDeadlineDays)
	require.Equal(t, "#login-user", p.Selectors.Username)
	require.Equal(t, ".eintrag", p.Selectors.TenderList)
	require.Empty(t, p.Selectors.Password)
}

func TestLoadPortals_FileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadPortals(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
