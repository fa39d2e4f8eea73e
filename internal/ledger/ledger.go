// Package ledger tracks how a recipe's ingredient totals are split across
// its preparation steps while the recipe is being written.
//
// The ledger answers one question for the step being edited: how much of
// each ingredient is not yet assigned to any other step. Amounts are kept
// as the free text the author typed ("200 g") and parsed on demand.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/culinario/backend/internal/quantity"
)

// epsilon absorbs float noise from repeated decimal additions.
const epsilon = 1e-9

// minNudgedAmount is the smallest amount Nudge leaves on an allocation.
const minNudgedAmount = 0.1

var (
	ErrStepOutOfRange    = errors.New("step index out of range")
	ErrUnknownIngredient = errors.New("ingredient is not part of the recipe")
	ErrOverAllocated     = errors.New("ingredient allocated beyond the recipe total")
	ErrNotAllocated      = errors.New("ingredient is not allocated to this step")
	ErrUnmeasuredAmount  = errors.New("amount of a measured ingredient must start with a number")
)

// Policy decides what SetAllocation does with an amount that exceeds what
// is left of an ingredient.
type Policy int

const (
	// PolicyReject refuses the whole allocation with an *OverAllocationError.
	PolicyReject Policy = iota
	// PolicyClamp lowers the offending amount to what is left and drops the
	// entry when nothing is left.
	PolicyClamp
)

// ParsePolicy maps a config value to a Policy. Unknown values reject.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), "clamp") {
		return PolicyClamp
	}
	return PolicyReject
}

func (p Policy) String() string {
	if p == PolicyClamp {
		return "clamp"
	}
	return "reject"
}

// Line is one row of the recipe's flat ingredient list.
type Line struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Allocation is the share of one ingredient a step consumes.
type Allocation struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Available is what a step may still take of one ingredient. Amount is
// empty for ingredients without a measurable total ("Salz nach Geschmack");
// those are always available.
type Available struct {
	Name     string            `json:"name"`
	Amount   string            `json:"amount"`
	Quantity quantity.Quantity `json:"quantity"`
	Measured bool              `json:"measured"`
}

// OverAllocationError reports the first ingredient whose requested amount
// does not fit.
type OverAllocationError struct {
	Step      int
	Name      string
	Requested float64
	Remaining float64
	Unit      string
}

func (e *OverAllocationError) Error() string {
	return fmt.Sprintf("step %d: %s requested %s but only %s left",
		e.Step+1, e.Name,
		quantity.Format(e.Requested, e.Unit, quantity.AuthoringDecimals),
		quantity.Format(e.Remaining, e.Unit, quantity.AuthoringDecimals))
}

// Is lets callers match with errors.Is(err, ErrOverAllocated).
func (e *OverAllocationError) Is(target error) bool {
	return target == ErrOverAllocated
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPolicy sets the over-allocation policy. The default is PolicyReject.
func WithPolicy(p Policy) Option {
	return func(l *Ledger) {
		l.policy = p
	}
}

// Ledger holds the flat ingredient list and the per-step allocations of a
// single authoring session. It is not safe for concurrent use.
type Ledger struct {
	lines  []Line
	steps  [][]Allocation
	policy Policy
}

// New creates a ledger over lines with the given number of empty steps.
func New(lines []Line, steps int, opts ...Option) *Ledger {
	if steps < 0 {
		steps = 0
	}
	l := &Ledger{
		lines: cloneLines(lines),
		steps: make([][]Allocation, steps),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the over-allocation policy in effect.
func (l *Ledger) Policy() Policy {
	return l.policy
}

// SetIngredients replaces the flat ingredient list. Existing allocations
// are kept as they are; call Validate to find ones that no longer fit.
func (l *Ledger) SetIngredients(lines []Line) {
	l.lines = cloneLines(lines)
}

// Ingredients returns a copy of the flat ingredient list.
func (l *Ledger) Ingredients() []Line {
	return cloneLines(l.lines)
}

// StepCount returns the number of steps.
func (l *Ledger) StepCount() int {
	return len(l.steps)
}

// AddStep appends an empty step and returns its index.
func (l *Ledger) AddStep() int {
	l.steps = append(l.steps, nil)
	return len(l.steps) - 1
}

// RemoveStep drops a step and its allocation. Later steps shift down.
func (l *Ledger) RemoveStep(step int) error {
	if err := l.checkStep(step); err != nil {
		return err
	}
	l.steps = append(l.steps[:step], l.steps[step+1:]...)
	return nil
}

// Allocation returns a copy of one step's allocation.
func (l *Ledger) Allocation(step int) ([]Allocation, error) {
	if err := l.checkStep(step); err != nil {
		return nil, err
	}
	return cloneAllocations(l.steps[step]), nil
}

// Allocations returns a copy of every step's allocation, indexed by step.
func (l *Ledger) Allocations() [][]Allocation {
	out := make([][]Allocation, len(l.steps))
	for i, a := range l.steps {
		out[i] = cloneAllocations(a)
	}
	return out
}

// AvailableFor lists, in ingredient-list order, what step may still use:
// each measured total minus everything the other steps hold. Ingredients
// with nothing left are omitted. The step's own allocation is not
// subtracted, so its current amounts count as available to it.
func (l *Ledger) AvailableFor(step int) ([]Available, error) {
	if err := l.checkStep(step); err != nil {
		return nil, err
	}

	totals, order := l.totals()
	used := l.usedExcept(step)

	result := make([]Available, 0, len(order))
	for _, key := range order {
		t := totals[key]
		if !t.measured {
			result = append(result, Available{Name: t.name})
			continue
		}
		left := t.quantity.Value - used[key]
		if left <= epsilon {
			continue
		}
		q := quantity.Quantity{Value: left, Unit: t.quantity.Unit}
		result = append(result, Available{
			Name:     t.name,
			Amount:   quantity.Format(q.Value, q.Unit, quantity.AuthoringDecimals),
			Quantity: q,
			Measured: true,
		})
	}
	return result, nil
}

// SetAllocation replaces step's allocation with allocs. Every name must be
// on the ingredient list, and an ingredient with a measured total only
// takes amounts that start with a number. Amounts that exceed what the
// other steps leave, or have no number, are rejected or dropped according
// to the ledger's policy; on rejection the previous allocation stays in
// place.
func (l *Ledger) SetAllocation(step int, allocs []Allocation) error {
	if err := l.checkStep(step); err != nil {
		return err
	}

	totals, _ := l.totals()
	used := l.usedExcept(step)
	requested := make(map[string]float64, len(allocs))

	next := make([]Allocation, 0, len(allocs))
	for _, a := range allocs {
		a.Name = strings.TrimSpace(a.Name)
		a.Amount = strings.TrimSpace(a.Amount)
		key := nameKey(a.Name)

		t, ok := totals[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownIngredient, a.Name)
		}
		if !t.measured {
			next = append(next, a)
			continue
		}

		q, ok := quantity.ParseStrict(a.Amount)
		if !ok {
			if l.policy == PolicyReject {
				return fmt.Errorf("step %d: %w: %s %q", step+1, ErrUnmeasuredAmount, t.name, a.Amount)
			}
			continue
		}
		want := q.Value
		left := t.quantity.Value - used[key] - requested[key]
		if left < 0 {
			left = 0
		}
		if want > left+epsilon {
			if l.policy == PolicyReject {
				return &OverAllocationError{
					Step:      step,
					Name:      t.name,
					Requested: requested[key] + want,
					Remaining: t.quantity.Value - used[key],
					Unit:      t.quantity.Unit,
				}
			}
			if left <= epsilon {
				continue
			}
			want = left
			a.Amount = quantity.Format(want, unitOf(a.Amount, t.quantity.Unit), quantity.AuthoringDecimals)
		}
		requested[key] += want
		next = append(next, a)
	}

	l.steps[step] = next
	return nil
}

// Nudge changes the amount of an ingredient already allocated to step by
// delta, keeping it between 0.1 and what the other steps leave. It fails
// with an *OverAllocationError when the other steps leave nothing, and
// with ErrUnmeasuredAmount when the allocated amount has no number.
func (l *Ledger) Nudge(step int, name string, delta float64) (Allocation, error) {
	if err := l.checkStep(step); err != nil {
		return Allocation{}, err
	}

	key := nameKey(name)
	idx := -1
	for i, a := range l.steps[step] {
		if nameKey(a.Name) == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Allocation{}, fmt.Errorf("%w: %q", ErrNotAllocated, name)
	}

	current, ok := quantity.ParseStrict(l.steps[step][idx].Amount)
	if !ok {
		return Allocation{}, fmt.Errorf("step %d: %w: %s %q", step+1, ErrUnmeasuredAmount, name, l.steps[step][idx].Amount)
	}
	value := current.Value + delta
	if value < minNudgedAmount {
		value = minNudgedAmount
	}

	totals, _ := l.totals()
	if t, ok := totals[key]; ok && t.measured {
		limit := t.quantity.Value - l.usedExcept(step)[key]
		if limit <= epsilon {
			return Allocation{}, &OverAllocationError{
				Step:      step,
				Name:      t.name,
				Requested: value,
				Remaining: math.Max(limit, 0),
				Unit:      t.quantity.Unit,
			}
		}
		if value > limit {
			value = limit
		}
	}

	a := l.steps[step][idx]
	a.Amount = quantity.Format(value, current.Unit, quantity.AuthoringDecimals)
	l.steps[step][idx] = a
	return a, nil
}

// Validate checks the whole ledger: every allocated name must be on the
// ingredient list, allocations of a measured ingredient must start with a
// number and no measured ingredient may be allocated beyond its total
// across all steps. All problems are returned joined.
func (l *Ledger) Validate() error {
	totals, order := l.totals()
	sums := make(map[string]float64, len(totals))
	var errs []error

	for i, step := range l.steps {
		for _, a := range step {
			key := nameKey(a.Name)
			if _, ok := totals[key]; !ok {
				errs = append(errs, fmt.Errorf("step %d: %w: %q", i+1, ErrUnknownIngredient, a.Name))
				continue
			}
			if t := totals[key]; t.measured {
				if _, ok := quantity.ParseStrict(a.Amount); !ok {
					errs = append(errs, fmt.Errorf("step %d: %w: %s %q", i+1, ErrUnmeasuredAmount, t.name, a.Amount))
					continue
				}
			}
			sums[key] += amountValue(a.Amount)
		}
	}

	for _, key := range order {
		t := totals[key]
		if !t.measured {
			continue
		}
		if sums[key] > t.quantity.Value+epsilon {
			errs = append(errs, &OverAllocationError{
				Step:      len(l.steps) - 1,
				Name:      t.name,
				Requested: sums[key],
				Remaining: t.quantity.Value,
				Unit:      t.quantity.Unit,
			})
		}
	}
	return errors.Join(errs...)
}

type total struct {
	name     string
	quantity quantity.Quantity
	measured bool
}

// totals parses the flat list into name -> total, keyed case-insensitively,
// along with the first-seen order of the keys. Repeated measured lines for
// the same name add up; the first unit wins.
func (l *Ledger) totals() (map[string]total, []string) {
	totals := make(map[string]total, len(l.lines))
	order := make([]string, 0, len(l.lines))

	for _, line := range l.lines {
		name := strings.TrimSpace(line.Name)
		if name == "" {
			continue
		}
		key := nameKey(name)
		q, measured := quantity.ParseStrict(line.Amount)

		existing, seen := totals[key]
		if !seen {
			order = append(order, key)
			totals[key] = total{name: name, quantity: q, measured: measured}
			continue
		}
		switch {
		case measured && existing.measured:
			existing.quantity.Value += q.Value
			totals[key] = existing
		case measured:
			totals[key] = total{name: existing.name, quantity: q, measured: true}
		}
	}
	return totals, order
}

// usedExcept sums every step's allocations except the given one.
func (l *Ledger) usedExcept(step int) map[string]float64 {
	used := make(map[string]float64)
	for i, allocs := range l.steps {
		if i == step {
			continue
		}
		for _, a := range allocs {
			used[nameKey(a.Name)] += amountValue(a.Amount)
		}
	}
	return used
}

func (l *Ledger) checkStep(step int) error {
	if step < 0 || step >= len(l.steps) {
		return fmt.Errorf("%w: %d (have %d)", ErrStepOutOfRange, step, len(l.steps))
	}
	return nil
}

// amountValue is the numeric part of an allocation; text without a leading
// number counts as nothing used.
func amountValue(text string) float64 {
	q, ok := quantity.ParseStrict(text)
	if !ok {
		return 0
	}
	return q.Value
}

// unitOf keeps the unit the author typed, falling back to the total's.
func unitOf(text, fallback string) string {
	if q, ok := quantity.ParseStrict(text); ok && q.Unit != "" {
		return q.Unit
	}
	return fallback
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cloneLines(in []Line) []Line {
	if in == nil {
		return nil
	}
	out := make([]Line, len(in))
	copy(out, in)
	return out
}

func cloneAllocations(in []Allocation) []Allocation {
	if in == nil {
		return nil
	}
	out := make([]Allocation, len(in))
	copy(out, in)
	return out
}
