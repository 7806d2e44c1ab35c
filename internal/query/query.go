// Package query filters card collections.
package query

import (
	"strings"

	"github.com/arcanaland/deckcreator/internal/card"
)

// StartingHeroSuffix marks the card that stands for a class's default hero.
const StartingHeroSuffix = " Starting Hero"

// NeutralClass is playable by every class.
const NeutralClass = "Neutral"

// Filter returns the items for which keep returns true, in input order.
// The input slice is never modified.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Uncollectible reports whether the card's "uncollectible" field is true.
func Uncollectible(c card.Card) bool {
	return c.Bool("uncollectible", false)
}

// Collectible is the complement of Uncollectible.
func Collectible(c card.Card) bool {
	return !Uncollectible(c)
}

// StartingHero reports whether the card is a class's starting hero.
func StartingHero(c card.Card) bool {
	return strings.HasSuffix(c.Name(), StartingHeroSuffix)
}

// FilterUncollectible keeps only cards explicitly marked uncollectible.
func FilterUncollectible(cards []card.Card) []card.Card {
	return Filter(cards, Uncollectible)
}

// FindClasses returns the class named by each starting hero, in card order.
// Duplicates are kept.
func FindClasses(cards []card.Card) []string {
	heroes := Filter(cards, StartingHero)
	classes := make([]string, 0, len(heroes))
	for _, c := range heroes {
		classes = append(classes, strings.TrimSuffix(c.Name(), StartingHeroSuffix))
	}
	return classes
}

// ClassSeparator splits a "class" field naming more than one class, as in
// "Priest / Warlock".
const ClassSeparator = " / "

// BelongsTo returns a predicate matching cards usable by class: cards whose
// "class" field, or any entry of their "classes" list, names the class or
// Neutral. Comparison ignores case.
func BelongsTo(class string) func(card.Card) bool {
	matches := func(name string) bool {
		name = strings.TrimSpace(name)
		return strings.EqualFold(name, class) || strings.EqualFold(name, NeutralClass)
	}
	return func(c card.Card) bool {
		for _, name := range strings.Split(c.String("class", ""), ClassSeparator) {
			if matches(name) {
				return true
			}
		}
		for _, name := range c.Strings("classes") {
			if matches(name) {
				return true
			}
		}
		return false
	}
}

// MeetsRunes reports whether selected satisfies a card's rune cost: every
// letter of required must appear in selected at least as many times.
// Letters compare case-insensitively.
func MeetsRunes(required, selected string) bool {
	have := make(map[rune]int, len(selected))
	for _, r := range strings.ToUpper(selected) {
		have[r]++
	}
	for _, r := range strings.ToUpper(required) {
		if have[r] == 0 {
			return false
		}
		have[r]--
	}
	return true
}

// RunesAllow returns a predicate matching cards whose "runes" cost, if any,
// is covered by the selected runes.
func RunesAllow(selected string) func(card.Card) bool {
	return func(c card.Card) bool {
		return MeetsRunes(c.String("runes", ""), selected)
	}
}

// ForClass returns the collectible cards a deck of the given class, built
// with the given runes, may use.
func ForClass(cards []card.Card, class, runes string) []card.Card {
	belongs := BelongsTo(class)
	allowed := RunesAllow(runes)
	return Filter(cards, func(c card.Card) bool {
		return Collectible(c) && belongs(c) && allowed(c)
	})
}

// Duplicates returns the values that occur more than once, in the order
// their second occurrence appears.
func Duplicates(values []string) []string {
	seen := make(map[string]int, len(values))
	var dups []string
	for _, v := range values {
		seen[v]++
		if seen[v] == 2 {
			dups = append(dups, v)
		}
	}
	return dups
}
