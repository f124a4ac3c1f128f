package goods_return

import "valora/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Returns adjust inventory value, so numbering must be gapless.
	NumeratorStrategy = numerator.StrategyStrict
)
