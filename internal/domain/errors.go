package domain

import "errors"

var (
	// ErrMalformedQuiz is returned when a creation text lacks a required marker line.
	ErrMalformedQuiz = errors.New("malformed quiz")
	// ErrInvalidDeadline is returned when the deadline text is not a calendar date-time.
	ErrInvalidDeadline = errors.New("invalid deadline")
	// ErrEmptyField is returned when question, answer or deadline is blank.
	ErrEmptyField = errors.New("empty quiz field")
	// ErrDimensionMismatch indicates two pixel buffers of different shape were compared.
	ErrDimensionMismatch = errors.New("image dimension mismatch")
	// ErrUndecodableImage indicates image bytes could not be decoded.
	ErrUndecodableImage = errors.New("undecodable image")
	// ErrStoreUnavailable wraps persistence failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrAttachmentFetchFailed indicates message content could not be retrieved.
	ErrAttachmentFetchFailed = errors.New("attachment fetch failed")
	// ErrQuizNotFound indicates there is no matching quiz.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAlreadyAnswered is returned by ledgers that reject a second record for the same user and quiz.
	ErrAlreadyAnswered = errors.New("already answered")
)
