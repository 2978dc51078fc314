// internal/trading/errors.go
package trading

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a trade failure by how the caller should react.
type ErrorKind int

const (
	// KindTransient covers network and upstream availability failures.
	// Monitoring loops log these and retry on the next cycle.
	KindTransient ErrorKind = iota
	// KindUpstreamRejected means the upstream accepted the request and
	// explicitly declined it. Retrying the same request will not help.
	KindUpstreamRejected
	// KindDataIntegrity means an upstream response disagreed with what we
	// sent, for example a transaction list of the wrong length. The
	// operation is aborted before any signing or submission.
	KindDataIntegrity
	// KindConfigFatal means a required credential or parameter is missing.
	KindConfigFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindUpstreamRejected:
		return "upstream_rejected"
	case KindDataIntegrity:
		return "data_integrity"
	case KindConfigFatal:
		return "config_fatal"
	default:
		return "unknown"
	}
}

// TradeError is the failure type every trading operation returns.
type TradeError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *TradeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *TradeError) Unwrap() error {
	return e.Err
}

// NewTradeError wraps err with an operation name and a failure class.
func NewTradeError(kind ErrorKind, op string, err error) *TradeError {
	return &TradeError{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the failure class from err. Unclassified errors are
// treated as transient so monitoring loops keep running.
func KindOf(err error) ErrorKind {
	var te *TradeError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindTransient
}

// IsRetryable reports whether retrying the operation could succeed.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}
