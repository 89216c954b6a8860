package filter

// Reduce folds records into an accumulator starting from identity.
func Reduce[R any, A any](records []R, identity A, combine func(A, R) A) A {
	acc := identity
	for _, r := range records {
		acc = combine(acc, r)
	}
	return acc
}

// Count returns the number of records.
func Count[R any](records []R) int {
	return len(records)
}

// CountWhere counts the records satisfying pred.
func CountWhere[R any](records []R, pred func(R) bool) int {
	return Reduce(records, 0, func(n int, r R) int {
		if pred(r) {
			return n + 1
		}
		return n
	})
}

// SumInt sums an integer projection of the records.
func SumInt[R any](records []R, value func(R) int) int {
	return Reduce(records, 0, func(sum int, r R) int {
		return sum + value(r)
	})
}

// SumFloat sums a float projection of the records.
func SumFloat[R any](records []R, value func(R) float64) float64 {
	return Reduce(records, 0.0, func(sum float64, r R) float64 {
		return sum + value(r)
	})
}

// Distinct returns the distinct non-empty values of field in first-seen order.
func Distinct[R Record](records []R, field string) []string {
	seen := make(map[string]bool)
	values := []string{}
	for _, r := range records {
		v, ok := r.FieldValue(field)
		if !ok || v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}

// Tally counts records per value of field. Records without the field are
// not counted.
func Tally[R Record](records []R, field string) map[string]int {
	return Reduce(records, map[string]int{}, func(m map[string]int, r R) map[string]int {
		if v, ok := r.FieldValue(field); ok && v != "" {
			m[v]++
		}
		return m
	})
}
