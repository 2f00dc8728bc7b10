package service

import (
	"errors"
	"fmt"
)

// EncodingError indicates the input image could not be serialized for upload.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("image encoding failed: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DecodeError indicates the model's reply was not a valid analysis document.
// Decoding is all-or-nothing; a DecodeError never carries a partial result.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("analysis decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InferenceErrorKind classifies the failure point of one Analyze call.
type InferenceErrorKind string

const (
	// InferenceInvalidInput: the image could not be encoded for upload.
	InferenceInvalidInput InferenceErrorKind = "invalid_input"
	// InferenceTransport: the request never produced an HTTP response.
	InferenceTransport InferenceErrorKind = "transport"
	// InferenceRemote: the endpoint answered with a non-2xx status.
	InferenceRemote InferenceErrorKind = "remote"
	// InferenceEmptyResponse: 2xx reply without any generated content.
	InferenceEmptyResponse InferenceErrorKind = "empty_response"
	// InferenceMalformedResult: generated content failed strict decoding.
	InferenceMalformedResult InferenceErrorKind = "malformed_result"
)

// InferenceError is the terminal error of one analysis attempt. Nothing is
// retried automatically at any layer.
type InferenceError struct {
	Kind InferenceErrorKind
	// StatusCode is set for InferenceRemote errors.
	StatusCode int
	// Diagnostic carries the remote response body on a best-effort basis.
	Diagnostic string
	Err        error
}

func (e *InferenceError) Error() string {
	switch e.Kind {
	case InferenceRemote:
		return fmt.Sprintf("inference failed: remote status %d", e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("inference failed: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("inference failed: %s", e.Kind)
	}
}

func (e *InferenceError) Unwrap() error { return e.Err }

// AsInferenceError unwraps err into an *InferenceError if there is one.
func AsInferenceError(err error) (*InferenceError, bool) {
	var infErr *InferenceError
	if errors.As(err, &infErr) {
		return infErr, true
	}
	return nil, false
}
