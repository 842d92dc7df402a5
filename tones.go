package psychescan

import (
	"fmt"
	"strings"
)

// Tone is the narrative style the report is written in
type Tone string

const (
	ToneFormal    Tone = "Formal Psychologist"
	ToneSarcastic Tone = "Roast Master"
	TonePoetic    Tone = "Mystic Oracle"
	ToneGenZ      Tone = "Internet Bestie"
)

// toneProfile keeps everything keyed by a tone in one place so the text
// instruction and the image style cannot drift apart.
type toneProfile struct {
	key         string
	glyph       string
	description string
	instruction string
	imageStyle  string
}

var toneOrder = []Tone{ToneFormal, ToneSarcastic, TonePoetic, ToneGenZ}

var toneProfiles = map[Tone]toneProfile{
	ToneFormal: {
		key:         "formal",
		glyph:       "🧠",
		description: "A clinical, professional analysis. Objective and clear.",
		instruction: "Be empathetic, professional, clear, and scientifically grounded.",
		imageStyle:  "Photorealistic, cinematic lighting, professional portrait, dignified",
	},
	ToneSarcastic: {
		key:         "sarcastic",
		glyph:       "🌶️",
		description: "Brutally honest, slightly mean, and very funny.",
		instruction: "Be roast-heavy. Use dry humor. Point out their flaws comedically. Don't be too nice.",
		imageStyle:  "Satirical caricature, exaggerated features, witty comic book style",
	},
	TonePoetic: {
		key:         "poetic",
		glyph:       "🔮",
		description: "Flowery metaphors, deep soul-gazing, and mystical vibes.",
		instruction: "Use metaphors, abstract concepts, and beautiful, flowing language. Be mystical.",
		imageStyle:  "Surrealist oil painting, dreamlike, abstract, ethereal lighting",
	},
	ToneGenZ: {
		key:         "genz",
		glyph:       "🤳",
		description: "No caps, slang heavy, vibey, and chronic online energy.",
		instruction: "Use internet slang (slay, no cap, cringe, main character energy). Use lowercase aesthetic where appropriate. Be dramatic.",
		imageStyle:  "Vaporwave, 3D render, cyberpunk, neon aesthetic, trending on artstation",
	},
}

// Tones returns the four tones in display order
func Tones() []Tone {
	out := make([]Tone, len(toneOrder))
	copy(out, toneOrder)
	return out
}

// Valid reports whether t is one of the known tones
func (t Tone) Valid() bool {
	_, ok := toneProfiles[t]
	return ok
}

// Key is the short identifier used on the command line and in config
func (t Tone) Key() string { return toneProfiles[t].key }

// Glyph is the decorative symbol shown next to the tone
func (t Tone) Glyph() string { return toneProfiles[t].glyph }

// Description is the human readable blurb shown on the tone picker
func (t Tone) Description() string { return toneProfiles[t].description }

// Instruction is the writing instruction embedded in the report prompt
func (t Tone) Instruction() string { return toneProfiles[t].instruction }

// ImageStyle is the visual style requested for the illustration
func (t Tone) ImageStyle() string { return toneProfiles[t].imageStyle }

// ParseTone accepts either a tone label or its short key, case-insensitively
func ParseTone(s string) (Tone, error) {
	s = strings.TrimSpace(s)
	for _, t := range toneOrder {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Key()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q", s)
}
