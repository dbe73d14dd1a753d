// Package categorize maps tender titles and descriptions onto a fixed set of
// trade categories by keyword scoring.
package categorize

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

type category struct {
	Label    string
	Keywords []string
}

// Declaration order matters: equal scores resolve to the earlier category.
var categories = []category{
	{"Hochbau", []string{
		"hochbau", "neubau", "gebäude", "gebaeude", "wohnbau", "wohnhaus",
		"bürogebäude", "buerogebaeude", "geschossbau", "mehrfamilienhaus",
		"einfamilienhaus", "rohbau", "mauerwerk", "betonbau",
	}},
	{"Tiefbau", []string{
		"tiefbau", "kanalbau", "kanal", "entwässerung", "entwaesserung",
		"abwasser", "kanalisation", "schacht", "rohrverlegung",
	}},
	{"Strassenbau", []string{
		"straßenbau", "strassenbau", "asphalt", "pflaster", "gehweg",
		"radweg", "fahrbahn", "verkehrsweg", "straßensanierung", "strassensanierung",
	}},
	{"Elektroinstallation", []string{
		"elektro", "elektrisch", "starkstrom", "schwachstrom", "beleuchtung",
		"photovoltaik", "pv-anlage", "solar", "elektroinstallation", "kabel",
	}},
	{"Heizung/Sanitaer/Klima", []string{
		"heizung", "sanitär", "sanitaer", "klima", "lüftung", "lueftung",
		"hls", "hvac", "wärmepumpe", "waermepumpe", "gas", "fernwärme",
	}},
	{"Maler/Lackierer", []string{
		"maler", "anstrich", "lackier", "beschichtung", "farbig", "wandfarbe",
	}},
	{"Trockenbau", []string{
		"trockenbau", "gipskarton", "rigips", "deckenabhängung", "akustikdecke",
	}},
	{"Fassadenbau", []string{
		"fassade", "wärmedämmung", "waermedaemmung", "wdvs", "außenwand",
		"aussenwand", "verkleidung", "vorhangfassade",
	}},
	{"Dacharbeiten", []string{
		"dach", "dachdecker", "dachsanierung", "dachziegel", "flachdach",
		"steildach", "abdichtung", "bitumen",
	}},
	{"Fenster/Tueren", []string{
		"fenster", "tür", "tuer", "verglasung", "glas", "türen", "tueren",
		"fensterbau", "rolladen", "jalousie",
	}},
	{"Bodenbelag", []string{
		"boden", "bodenbelag", "parkett", "laminat", "fliese", "estrich",
		"teppich", "linoleum", "vinyl", "bodenlegearb",
	}},
	{"Metallbau", []string{
		"metall", "stahl", "schlosser", "geländer", "gelaender", "stahlbau",
		"konstruktion", "schweißen", "schweissen",
	}},
	{"Holzbau/Zimmerer", []string{
		"holzbau", "zimmerer", "zimmermann", "holzkonstruktion", "dachstuhl",
		"carport", "holzfassade",
	}},
	{"Garten-/Landschaftsbau", []string{
		"garten", "landschaft", "grünanlage", "gruenanlage", "pflanz",
		"baumpflege", "spielplatz", "außenanlage", "aussenanlage",
	}},
	{"Abbruch/Entsorgung", []string{
		"abbruch", "abriss", "rückbau", "rueckbau", "entsorgung", "demontage",
		"schadstoff", "asbest", "kontaminiert",
	}},
	{"Erdarbeiten", []string{
		"erdarbeit", "aushub", "erdbau", "baggerarbeit", "gründung", "gruendung",
		"fundament", "baugrube", "verfüllung",
	}},
	{"Aufzuege/Foerdertechnik", []string{
		"aufzug", "fahrstuhl", "lift", "förderanlage", "foerderanlage",
		"aufzugsanlage", "treppenlift",
	}},
	{"Brandschutz", []string{
		"brandschutz", "feuerschutz", "brandmelde", "sprinkler", "rauchmelder",
		"brandschott", "fluchtweg",
	}},
	{"Planung/Architektur", []string{
		"planung", "architekt", "generalplan", "entwurf", "bauüberwachung",
		"bauueberwachung", "projektsteuerung", "öba", "oeba",
	}},
	{"IT/Technik", []string{
		"it-", "software", "hardware", "netzwerk", "server", "datenverarbeitung",
		"telekommunikation", "medientechnik",
	}},
	{"Reinigung", []string{
		"reinigung", "gebäudereinigung", "gebaeudereinigung", "unterhaltsreinigung",
		"glasreinigung", "sonderreinigung",
	}},
	{"Moebel/Einrichtung", []string{
		"möbel", "moebel", "einrichtung", "büromöbel", "bueromoebel",
		"schrank", "tisch", "stuhl", "ausstattung",
	}},
	{"Lieferung/Material", []string{
		"lieferung", "beschaffung", "material", "baustoffe", "liefern",
	}},
}

// FallbackLabel is returned when no category keyword matches at all.
const FallbackLabel = "Sonstige Bauleistungen"

// One Aho-Corasick automaton over every keyword, built once. keywordCat maps
// a matcher hit index back to the category that owns the keyword.
var (
	matcher    *ahocorasick.Matcher
	keywordCat []int
)

func init() {
	keywords := make([]string, 0, len(categories)*8)
	for ci, cat := range categories {
		for _, kw := range cat.Keywords {
			keywords = append(keywords, kw)
			keywordCat = append(keywordCat, ci)
		}
	}
	matcher = ahocorasick.NewStringMatcher(keywords)
}

// Categorize scores every category against title and description in a single
// automaton pass per field. A keyword found in the title counts 2; found only
// in the description it counts 1. The highest total wins, equal totals resolve
// to the first declared category.
func Categorize(title, description string) string {
	titleHits := matcher.MatchThreadSafe([]byte(strings.ToLower(title)))
	descHits := matcher.MatchThreadSafe([]byte(strings.ToLower(description)))

	scores := make([]int, len(categories))
	inTitle := make(map[int]struct{}, len(titleHits))
	for _, h := range titleHits {
		inTitle[h] = struct{}{}
		scores[keywordCat[h]] += 2
	}
	for _, h := range descHits {
		if _, ok := inTitle[h]; !ok {
			scores[keywordCat[h]]++
		}
	}

	best := ""
	bestScore := 0
	for ci, cat := range categories {
		if scores[ci] > bestScore {
			best = cat.Label
			bestScore = scores[ci]
		}
	}

	if best == "" {
		return FallbackLabel
	}
	return best
}

// Labels lists every category label plus the fallback, in declaration order.
func Labels() []string {
	out := make([]string, 0, len(categories)+1)
	for _, c := range categories {
		out = append(out, c.Label)
	}
	return append(out, FallbackLabel)
}
