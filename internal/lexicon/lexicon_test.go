package lexicon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCity(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Graz", City("Ausführungsort: 8010 Graz, Hauptplatz"))
	require.Equal(t, "München", City("Bauvorhaben in münchen Zentrum"))
	require.Equal(t, "", City("Details siehe Unterlagen"))
}

func TestCity_FallsBackToPostalPlace(t *testing.T) {
	t.Parallel()

	// Not in the city list, but the postal pattern names the place.
	require.Equal(t, "Gmunden", City("Lieferort: 4810 Gmunden"))
}

func TestPostalCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "4810", PostalCode("A-4810 Gmunden, Österreich"))
	require.Equal(t, "10115", PostalCode("10115 Berlin Mitte"))
	require.Equal(t, "", PostalCode("ohne Ortsangabe"))
}

func TestScore(t *testing.T) {
	t.Parallel()

	kws := []string{"dach", "fassade", "fenster"}
	require.Equal(t, 2, Score("Dachsanierung inkl. Fassade", kws))
	require.Equal(t, 0, Score("Reinigung", kws))
}

func TestContainsAny(t *testing.T) {
	t.Parallel()

	require.True(t, ContainsAny("Willkommen zurück!", []string{"logout", "willkommen"}))
	require.False(t, ContainsAny("Bitte anmelden", []string{"logout", "abmelden"}))
}
