package goods_receipt

import "valora/internal/core/numerator"

// Receipts are primary accounting documents, so their numbers come
// from the gap-free strict sequence.
const NumeratorStrategy = numerator.StrategyStrict
