package game

import "math/rand"

const (
	defaultWordleGuesses = 6
	defaultWordLanguage  = "es"
)

// Five-letter answer pools. Kept short on purpose; a deployment wanting a
// bigger dictionary can extend these lists without touching the rules.
var wordLists = map[string][]string{
	"es": {
		"AUDIO", "BARCO", "CAMPO", "DULCE", "FUEGO", "GATOS", "HUEVO",
		"JUEGO", "LIBRO", "LUCES", "MUNDO", "NOCHE", "PAPEL", "PERRO",
		"PIANO", "PLAYA", "QUESO", "RATON", "SALTO", "SUELO", "TARDE",
		"TIGRE", "TRAJE", "VERDE", "VIAJE",
	},
	"en": {
		"ABOUT", "BEACH", "BRAVE", "CANDY", "DREAM", "EARTH", "FLAME",
		"GHOST", "HEART", "JUICE", "LEMON", "MONEY", "NIGHT", "OCEAN",
		"PAPER", "QUIET", "RIVER", "SMILE", "STONE", "TIGER", "TRAIN",
		"VIVID", "WATER", "WORLD", "YOUTH",
	},
}

func randomWord(language string, rng *rand.Rand) string {
	words, ok := wordLists[language]
	if !ok {
		words = wordLists[defaultWordLanguage]
	}
	if rng == nil {
		return words[0]
	}
	return words[rng.Intn(len(words))]
}
