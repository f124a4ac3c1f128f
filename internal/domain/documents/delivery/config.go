package delivery

import "valora/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Deliveries are high-volume shipping documents, gaps are acceptable.
	NumeratorStrategy = numerator.StrategyCached
)
