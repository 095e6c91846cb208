package tts

import (
	"math/rand"
	"strings"
)

// Chirp HD voices per language. One is picked at random per passage.
var chirpVoices = map[string][]string{
	"en": {
		"en-US-Chirp3-HD-Achird",
		"en-US-Chirp3-HD-Callirrhoe",
		"en-US-Chirp3-HD-Achernar",
		"en-US-Chirp3-HD-Algenib",
		"en-US-Chirp3-HD-Erinome",
		"en-US-Chirp3-HD-Schedar",
		"en-US-Chirp3-HD-Kore",
	},
	"es": {
		"es-ES-Chirp-HD-F",
		"es-ES-Chirp-HD-O",
		"es-ES-Chirp3-HD-Gacrux",
		"es-US-Chirp3-HD-Leda",
		"es-ES-Chirp3-HD-Algenib",
		"es-ES-Chirp3-HD-Charon",
		"es-US-Chirp3-HD-Algieba",
	},
	"zh": {
		"cmn-CN-Chirp3-HD-Aoede",
		"cmn-CN-Chirp3-HD-Leda",
		"cmn-CN-Chirp3-HD-Puck",
	},
}

var defaultLanguageCodes = map[string]string{"en": "en-US", "es": "es-ES", "zh": "cmn-CN"}

// PickVoice returns a random voice for lang, falling back to English.
func PickVoice(lang string, rng *rand.Rand) string {
	voices, ok := chirpVoices[lang]
	if !ok {
		voices = chirpVoices["en"]
	}
	if rng == nil {
		return voices[rand.Intn(len(voices))]
	}
	return voices[rng.Intn(len(voices))]
}

// LanguageCode derives the BCP-47 code from a voice name such as
// "es-US-Chirp3-HD-Leda". The voice's own region wins over the list language.
func LanguageCode(voice, lang string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) == 3 {
		return parts[0] + "-" + parts[1]
	}
	if c, ok := defaultLanguageCodes[lang]; ok {
		return c
	}
	return "en-US"
}
