package domain

import "errors"

var (
	// ErrNoActiveQuiz is returned when an answer arrives with no quiz in progress.
	ErrNoActiveQuiz = errors.New("no active quiz")
	// ErrQuestionNotInQuiz is returned when an answered question ID is not part of the current quiz.
	ErrQuestionNotInQuiz = errors.New("question not in current quiz")
	// ErrCatalogNotFound indicates the question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("question catalog not found")
	// ErrUnknownMode indicates an unrecognized study mode.
	ErrUnknownMode = errors.New("unknown study mode")
)
