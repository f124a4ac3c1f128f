package numerator

// Strategy selects how numbers are allocated.
type Strategy int

const (
	// StrategyStrict takes every number from the database with
	// UPDATE ... RETURNING: gapless, one round trip per number. Stock
	// documents use it since auditors expect unbroken sequences.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges in memory. Faster, but a restart
	// abandons the unused remainder of the range.
	StrategyCached
)

// Options configure a single generation call.
type Options struct {
	Strategy Strategy

	// RangeSize is how many numbers a Cached allocation claims at once.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns the strict strategy.
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyStrict,
	}
}

// Config is the per-document-type numbering scheme.
type Config struct {
	// Prefix added to all numbers ("GR", "RT", "TR")
	Prefix string

	// IncludeYear adds the year segment to the number
	IncludeYear bool

	// PadWidth is the minimum counter width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns the scheme the stock documents share:
// PREFIX-YEAR-XXXXX with a yearly reset.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}
