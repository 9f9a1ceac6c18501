package emotion

import "strings"

type lexiconEntry struct {
	emotion  string
	keywords []string
	phrases  []string
}

// Lexicon holds the keyword and phrase cues of the local classifier. It is
// built once and never mutated, so one instance can be shared across goroutines.
type Lexicon struct {
	entries []lexiconEntry
}

// LexiconEntry is the exported view of one emotion's cues.
type LexiconEntry struct {
	Emotion  string   `json:"emotion"`
	Keywords []string `json:"keywords"`
	Phrases  []string `json:"phrases,omitempty"`
}

// NewLexicon builds a lexicon from entries. Cues are lower-cased and blank ones
// are dropped. Only joy, sadness, anger, fear and surprise carry cues; entries
// for other labels are ignored.
func NewLexicon(entries []LexiconEntry) *Lexicon {
	lex := &Lexicon{entries: make([]lexiconEntry, 0, len(entries))}
	for _, e := range entries {
		if !isScored(e.Emotion) {
			continue
		}
		lex.entries = append(lex.entries, lexiconEntry{
			emotion:  e.Emotion,
			keywords: normalizeCues(e.Keywords),
			phrases:  normalizeCues(e.Phrases),
		})
	}
	return lex
}

func normalizeCues(cues []string) []string {
	out := make([]string, 0, len(cues))
	for _, c := range cues {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Entries returns a copy of the lexicon contents.
func (l *Lexicon) Entries() []LexiconEntry {
	out := make([]LexiconEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, LexiconEntry{
			Emotion:  e.emotion,
			Keywords: append([]string(nil), e.keywords...),
			Phrases:  append([]string(nil), e.phrases...),
		})
	}
	return out
}

// DefaultLexicon returns the built-in English lexicon.
func DefaultLexicon() *Lexicon {
	return NewLexicon([]LexiconEntry{
		{
			Emotion: Joy,
			Keywords: []string{
				"happy", "joy", "love", "excited", "amazing", "wonderful", "great",
				"fantastic", "excellent", "good", "awesome", "brilliant", "perfect",
				"smile", "laugh", "celebrate", "success", "achievement", "grateful",
				"thankful", "blessed", "optimistic", "hopeful", "confident", "proud",
				"ecstatic", "thrilled", "delighted", "nice", "friend", "together",
				"weekend", "gym", "pray", "prayed",
			},
			Phrases: []string{"really good", "so happy", "times like this", "met a friend"},
		},
		{
			Emotion: Sadness,
			Keywords: []string{
				"sad", "depressed", "down", "unhappy", "miserable", "heartbroken",
				"gloomy", "hopeless", "lonely", "tearful", "disappointed", "grief",
				"sorrow", "melancholy", "despair", "cry", "crying", "hurt", "bad",
				"fell", "falling", "injury", "pain", "ache",
			},
			Phrases: []string{"really bad", "fell down", "made me cry", "broke my heart"},
		},
		{
			Emotion: Anger,
			Keywords: []string{
				"angry", "mad", "furious", "enraged", "irritated", "annoyed",
				"frustrated", "outraged", "livid", "irate", "seething", "bitter",
				"resentful", "aggravated", "infuriated", "unfair", "rude", "mean",
				"push", "pushed", "shove", "shoved", "attack", "assault",
			},
			Phrases: []string{"why would someone do that", "pushed me", "did that to me", "so unfair"},
		},
		{
			Emotion: Fear,
			Keywords: []string{
				"afraid", "scared", "frightened", "terrified", "nervous", "anxious",
				"worried", "panicked", "dread", "apprehensive", "uneasy", "tense",
				"intimidated", "threatened",
			},
		},
		{
			Emotion: Surprise,
			Keywords: []string{
				"surprised", "shocked", "amazed", "astonished", "stunned",
				"astounded", "dumbfounded", "flabbergasted", "bewildered",
				"startled", "taken aback",
			},
		},
	})
}
