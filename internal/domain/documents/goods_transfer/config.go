package goods_transfer

import "valora/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Internal movements tolerate numbering gaps.
	NumeratorStrategy = numerator.StrategyCached
)
