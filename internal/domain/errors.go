package domain

import "errors"

// Error taxonomy of the valuation engine.
//
// ErrPriceUnavailable is recovered locally by the aggregator (the
// position is valued at zero); ErrConversionUnavailable aborts the
// enclosing valuation call; ErrUnsupportedMarket is an input error and
// fails fast; ErrMalformedResponse is treated exactly like a network
// failure by the fallback chains.
var (
	ErrPriceUnavailable      = errors.New("price unavailable from all sources")
	ErrConversionUnavailable = errors.New("currency conversion unavailable")
	ErrUnsupportedMarket     = errors.New("unsupported market")
	ErrMalformedResponse     = errors.New("malformed source response")
)
