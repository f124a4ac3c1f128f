package goods_issue

import "valora/internal/core/numerator"

// Issues are primary accounting documents, so their numbers come from
// the gap-free strict sequence.
const NumeratorStrategy = numerator.StrategyStrict
