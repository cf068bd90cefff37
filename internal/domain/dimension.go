package domain

// Dimension is the (cost code, cost type) pair used as the matching key
// between budget lines and change-order lines. Changes apply to the cost
// bucket, not to a specific ledger row.
type Dimension struct {
	CostCodeID int32
	CostTypeID int32
}

// Dimensioned is implemented by any line that carries a cost dimension.
type Dimensioned interface {
	Dimension() (Dimension, bool)
}

// IndexByDimension groups lines by their cost dimension. Lines missing either
// half of the key are skipped; insertion order is preserved within a bucket.
// The index is rebuilt whenever the underlying line set changes.
func IndexByDimension[T Dimensioned](lines []T) map[Dimension][]T {
	index := make(map[Dimension][]T, len(lines))
	for _, line := range lines {
		dim, ok := line.Dimension()
		if !ok {
			continue
		}
		index[dim] = append(index[dim], line)
	}
	return index
}
