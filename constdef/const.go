package constdef

const (
	MinStakerIDLength = 1
	MaxStakerIDLength = 100
	MaxGaugeIDLength  = 100
	MaxTypeNameLength = 64
)

const (
	// FixedPointDecimals is the number of decimals carried by weights, rates,
	// balances and integrals. All fixed-point values are integers scaled by
	// 10^FixedPointDecimals.
	FixedPointDecimals = 18

	// MaxDecimalDigits bounds the decimal strings accepted from callers and
	// persisted to the database.
	MaxDecimalDigits = 65
)

// Weight point kinds stored in weight_point_info.
const (
	WeightKindGauge   = 1
	WeightKindTypeSum = 2
	WeightKindType    = 3
	WeightKindTotal   = 4
)

const (
	// MaxCheckpointEpochs caps the number of week boundaries a single
	// checkpoint advancement walks. With weekly epochs this is nearly ten
	// years of backlog.
	MaxCheckpointEpochs = 500
)

const (
	// DefaultRateCeiling is the upper bound enforced on commitnewrate
	// proposals unless overridden by config.
	DefaultRateCeiling = 10_000_000
)
