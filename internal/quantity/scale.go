package quantity

// Scale converts an amount written for baseServings into the amount for
// targetServings. The amount is returned unchanged when the counts are
// equal or when either count is not positive. The result is not rounded,
// and NaN or infinite inputs propagate so render code can detect them.
func Scale(baseAmount float64, baseServings, targetServings int) float64 {
	if baseServings <= 0 || targetServings <= 0 || baseServings == targetServings {
		return baseAmount
	}
	return baseAmount * (float64(targetServings) / float64(baseServings))
}

// ScaleQuantity scales q.Value and keeps the unit.
func ScaleQuantity(q Quantity, baseServings, targetServings int) Quantity {
	return Quantity{Value: Scale(q.Value, baseServings, targetServings), Unit: q.Unit}
}

// Servings is the serving counter a cook adjusts. It never drops below one
// and has no upper bound.
type Servings struct {
	n int
}

// NewServings returns a counter starting at n, or at 1 if n is smaller.
func NewServings(n int) Servings {
	if n < 1 {
		n = 1
	}
	return Servings{n: n}
}

// Count returns the current serving count.
func (s Servings) Count() int {
	if s.n < 1 {
		return 1
	}
	return s.n
}

// Increment adds one serving.
func (s *Servings) Increment() {
	s.n = s.Count() + 1
}

// Decrement removes one serving unless only one is left.
func (s *Servings) Decrement() {
	if s.Count() > 1 {
		s.n = s.Count() - 1
	}
}
