package endpoints

import (
	"errors"

	"mq-dashboard/internal/domain"
)

const (
	API_SUCCESS = iota + 303000 // 303000
	API_FAILURE                 // 303001 - Generic API failure
)

const (
	SAMPLES_NOT_AVAILABLE = iota + 101 // 101 - No recorded samples for the given page
	INVALID_PARAMETERS                 // 102 - Non-integer limit/offset
	INVALID_SOURCE                     // 103 - Source is neither kafka nor rabbitmq
	REQUEST_CANCELLED                  // 104 - Request was cancelled by client or server timeout
	METHOD_NOT_ALLOWED                 // 105 - Only GET is served
)

var (
	ErrNoSamplesAvailable = errors.New("no samples recorded for the specified criteria")
	ErrInvalidParameters  = errors.New("invalid limit or offset parameter; must be integers")
	ErrRequestCancelled   = errors.New("request cancelled by client or server timeout")
	ErrMethodNotAllowed   = errors.New("method not allowed; only GET requests are supported")
	ErrUpstreamStatus     = errors.New("upstream returned a non-success status")
)

func GetErrorCode(err error) int {
	if err == nil {
		return API_SUCCESS
	}

	switch {
	case errors.Is(err, ErrNoSamplesAvailable):
		return SAMPLES_NOT_AVAILABLE
	case errors.Is(err, ErrInvalidParameters):
		return INVALID_PARAMETERS
	case errors.Is(err, domain.ErrUnknownSource):
		return INVALID_SOURCE
	case errors.Is(err, ErrRequestCancelled):
		return REQUEST_CANCELLED
	case errors.Is(err, ErrMethodNotAllowed):
		return METHOD_NOT_ALLOWED
	default:
		return API_FAILURE // Default for any unhandled error
	}
}
