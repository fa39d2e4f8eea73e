package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyInput is returned when there is nothing to resolve.
var ErrEmptyInput = errors.New("ingredient input is empty")

// MatchPolicy decides which catalog entry wins when several names are a
// suffix of the input ("Salz" and "Meersalz" for "1 TL Meersalz").
type MatchPolicy int

const (
	// MatchLongest picks the longest matching name, then catalog order.
	MatchLongest MatchPolicy = iota
	// MatchFirst picks the first match in catalog order.
	MatchFirst
)

// ParseMatchPolicy maps a config value to a MatchPolicy. Unknown values
// use MatchLongest.
func ParseMatchPolicy(s string) MatchPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "first") {
		return MatchFirst
	}
	return MatchLongest
}

func (p MatchPolicy) String() string {
	if p == MatchFirst {
		return "first"
	}
	return "longest"
}

// Resolution is the outcome of resolving one free-text ingredient row.
type Resolution struct {
	Input      string     `json:"input"`
	Amount     string     `json:"amount"`
	Name       string     `json:"name"`
	Ingredient Ingredient `json:"ingredient"`
	// Placeholder is set when the ingredient is not in the catalog.
	Placeholder bool `json:"placeholder"`
	// Created is set when this call added the placeholder to the store.
	Created bool `json:"created"`
}

// Resolver maps free text like "2 EL Butter" to an amount and a known or
// newly created ingredient.
type Resolver struct {
	catalog *Catalog
	store   PlaceholderStore
	policy  MatchPolicy
	logger  *zap.Logger
	newID   func() string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

func WithMatchPolicy(p MatchPolicy) ResolverOption {
	return func(r *Resolver) { r.policy = p }
}

func WithLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIDGenerator replaces the uuid generator used for new placeholders.
func WithIDGenerator(fn func() string) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewResolver creates a resolver. A nil store keeps placeholders in memory.
func NewResolver(c *Catalog, store PlaceholderStore, opts ...ResolverOption) *Resolver {
	if store == nil {
		store = NewMemoryPlaceholderStore()
	}
	r := &Resolver{
		catalog: c,
		store:   store,
		policy:  MatchLongest,
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the canonical catalog the resolver matches against.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Placeholders returns the placeholder store.
func (r *Resolver) Placeholders() PlaceholderStore {
	return r.store
}

// Policy returns the suffix tie-break in effect.
func (r *Resolver) Policy() MatchPolicy {
	return r.policy
}

// Lookup finds name in the catalog and then among the placeholders.
func (r *Resolver) Lookup(ctx context.Context, name string) (Ingredient, bool, error) {
	if ing, ok := r.catalog.Lookup(name); ok {
		return ing, true, nil
	}
	return r.store.Lookup(ctx, name)
}

// Resolve runs the two resolution stages on input.
//
// Stage one looks for catalog entries, then stored placeholders, whose
// name ends the input (case-insensitive); the text before the name is the
// amount. Stage two splits the input into a leading non-letter portion,
// an optional unit word and the trailing words, which become the name of
// a new placeholder ingredient.
func (r *Resolver) Resolve(ctx context.Context, input string) (Resolution, error) {
	input = strings.Join(strings.Fields(input), " ")
	if input == "" {
		return Resolution{}, ErrEmptyInput
	}

	placeholders, err := r.store.List(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to load placeholders: %w", err)
	}

	if ing, ok := r.matchSuffix(input, placeholders); ok {
		return Resolution{
			Input:       input,
			Amount:      trimSuffixRunes(input, utf8.RuneCountInString(ing.Name)),
			Name:        ing.Name,
			Ingredient:  ing,
			Placeholder: ing.Placeholder,
		}, nil
	}

	amount, name := splitUnknown(input)
	stored, created, err := r.store.Add(ctx, Ingredient{
		ID:          r.newID(),
		Name:        name,
		Image:       PlaceholderImage,
		Placeholder: true,
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to store placeholder %q: %w", name, err)
	}
	if created {
		r.logger.Info("created placeholder ingredient",
			zap.String("name", stored.Name),
			zap.String("id", stored.ID))
	}

	return Resolution{
		Input:       input,
		Amount:      amount,
		Name:        stored.Name,
		Ingredient:  stored,
		Placeholder: true,
		Created:     created,
	}, nil
}

func (r *Resolver) matchSuffix(input string, placeholders []Ingredient) (Ingredient, bool) {
	lower := strings.ToLower(input)
	candidates := append(r.catalog.All(), placeholders...)

	var best Ingredient
	bestLen := -1
	for _, ing := range candidates {
		name := strings.ToLower(strings.TrimSpace(ing.Name))
		if name == "" || !strings.HasSuffix(lower, name) {
			continue
		}
		if r.policy == MatchFirst {
			return ing, true
		}
		if n := utf8.RuneCountInString(name); n > bestLen {
			best, bestLen = ing, n
		}
	}
	return best, bestLen >= 0
}

// unknownRow splits free text into a leading non-letter portion and the
// trailing words.
var unknownRow = regexp.MustCompile(`^([^\p{L}]*?)\s*(\p{L}[\p{L}\s]*)$`)

// splitUnknown separates amount and name of text that matched nothing.
// With a leading number, the first word is read as the unit when more
// words follow ("3 Prisen Magie" is 3 Prisen of Magie). Text that does
// not end in letters becomes the name as a whole.
func splitUnknown(input string) (amount, name string) {
	m := unknownRow.FindStringSubmatch(input)
	if m == nil {
		return "", input
	}

	number := strings.TrimSpace(m[1])
	words := strings.Fields(m[2])
	if number == "" || len(words) < 2 {
		return number, strings.Join(words, " ")
	}
	return number + " " + words[0], strings.Join(words[1:], " ")
}

func trimSuffixRunes(s string, n int) string {
	runes := []rune(s)
	if n > len(runes) {
		n = len(runes)
	}
	return strings.TrimSpace(string(runes[:len(runes)-n]))
}
