/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package emoji

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/viper"
)

// Phrase is a single catalog entry. It is comparable, so it can be used
// directly as a set key.
type Phrase struct {
	Emojis     string `json:"emojis" mapstructure:"emojis"`
	Answer     string `json:"answer" mapstructure:"answer"`
	Difficulty int    `json:"difficulty" mapstructure:"difficulty"`
}

// Catalog is a read-only list of phrases.
type Catalog struct {
	phrases []Phrase
	intn    func(n int) int
}

var defaultPhrases = []Phrase{
	{Emojis: "🍎🩺", Answer: "an apple a day keeps the doctor away", Difficulty: 1},
	{Emojis: "🐦👋", Answer: "kill two birds with one stone", Difficulty: 2},
	{Emojis: "🌧️🐱🐶", Answer: "its raining cats and dogs", Difficulty: 1},
	{Emojis: "🍰🎂", Answer: "piece of cake", Difficulty: 1},
	{Emojis: "❄️🧊", Answer: "break the ice", Difficulty: 2},
	{Emojis: "🐘🏠", Answer: "elephant in the room", Difficulty: 2},
	{Emojis: "🔥💨", Answer: "where theres smoke theres fire", Difficulty: 3},
	{Emojis: "🏠💎", Answer: "home is where the heart is", Difficulty: 2},
	{Emojis: "⏰💰", Answer: "time is money", Difficulty: 1},
	{Emojis: "🌟👁️", Answer: "reach for the stars", Difficulty: 2},
	{Emojis: "🔔🐱", Answer: "curiosity killed the cat", Difficulty: 2},
	{Emojis: "🎯🖼️", Answer: "worth a thousand words", Difficulty: 3},
	{Emojis: "🐟🌊", Answer: "plenty of fish in the sea", Difficulty: 2},
	{Emojis: "🥾👢", Answer: "the shoe is on the other foot", Difficulty: 3},
	{Emojis: "🌙🔵", Answer: "once in a blue moon", Difficulty: 2},
	{Emojis: "🍯🐝", Answer: "busy as a bee", Difficulty: 1},
	{Emojis: "💔🎵", Answer: "music soothes the savage beast", Difficulty: 3},
	{Emojis: "🍀☘️", Answer: "the luck of the irish", Difficulty: 2},
	{Emojis: "🌈🏺", Answer: "pot of gold at the end of the rainbow", Difficulty: 2},
	{Emojis: "🐎🌊", Answer: "dont look a gift horse in the mouth", Difficulty: 3},
}

// DefaultCatalog returns the built-in phrase list.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultPhrases)
	if err != nil {
		panic("invalid built-in catalog: " + err.Error())
	}

	return c
}

// NewCatalog validates and copies phrases into a new Catalog.
func NewCatalog(phrases []Phrase) (*Catalog, error) {
	if len(phrases) == 0 {
		return nil, errors.New("catalog must contain at least one phrase")
	}

	seen := make(map[Phrase]struct{}, len(phrases))
	list := make([]Phrase, 0, len(phrases))

	for i, p := range phrases {
		p.Emojis = strings.TrimSpace(p.Emojis)
		p.Answer = strings.TrimSpace(p.Answer)

		switch {
		case p.Emojis == "":
			return nil, fmt.Errorf("phrase %d: missing emojis", i)
		case p.Answer == "":
			return nil, fmt.Errorf("phrase %d: missing answer", i)
		case p.Difficulty < MinDifficulty || p.Difficulty > MaxDifficulty:
			return nil, fmt.Errorf("phrase %d: difficulty must be between %d and %d, got %d",
				i, MinDifficulty, MaxDifficulty, p.Difficulty)
		}

		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("phrase %d: duplicate of %q", i, p.Answer)
		}
		seen[p] = struct{}{}

		list = append(list, p)
	}

	return &Catalog{
		phrases: list,
		intn:    rand.IntN,
	}, nil
}

// LoadCatalog reads a phrase file (json, yaml or toml, picked by extension)
// holding a top-level "phrases" list.
func LoadCatalog(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading phrase file: %w", err)
	}

	var phrases []Phrase
	if err := v.UnmarshalKey("phrases", &phrases); err != nil {
		return nil, fmt.Errorf("parsing phrase file: %w", err)
	}

	return NewCatalog(phrases)
}

// Len reports the number of phrases in the catalog.
func (c *Catalog) Len() int {
	return len(c.phrases)
}

// Remaining counts the phrases not present in used.
func (c *Catalog) Remaining(used map[Phrase]struct{}) int {
	n := 0
	for _, p := range c.phrases {
		if _, ok := used[p]; !ok {
			n++
		}
	}

	return n
}

// Sample picks uniformly among phrases not in used. It reports false once
// every phrase has been used.
func (c *Catalog) Sample(used map[Phrase]struct{}) (Phrase, bool) {
	available := make([]Phrase, 0, len(c.phrases))
	for _, p := range c.phrases {
		if _, ok := used[p]; !ok {
			available = append(available, p)
		}
	}

	if len(available) == 0 {
		return Phrase{}, false
	}

	return available[c.intn(len(available))], true
}
