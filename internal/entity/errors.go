package entity

import "errors"

var (
	// ErrInvalidInput covers malformed, oversized, or unparseable images and
	// invalid request parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrModelUnavailable means the requested model variant was not loaded.
	ErrModelUnavailable = errors.New("model variant unavailable")
	// ErrShapeMismatch means a tensor does not match the model's input signature.
	ErrShapeMismatch = errors.New("tensor shape mismatch")
	// ErrPipeline covers unexpected failures during single-item processing.
	ErrPipeline = errors.New("prediction pipeline failed")
)
