package drip

import "errors"

var (
	// ErrTickerNotFound ticker is not in the universe
	ErrTickerNotFound = errors.New("ticker not found")

	// ErrPriceNotFound no price rows for the requested ticker/range
	ErrPriceNotFound = errors.New("price not found")

	// ErrDistributionNotFound no distribution rows for the requested ticker/range
	ErrDistributionNotFound = errors.New("distribution not found")

	// ErrResultNotFound no stored DRIP result for the requested key
	ErrResultNotFound = errors.New("drip result not found")
)
