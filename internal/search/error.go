package search

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSort = errors.New("unknown sort key")

	errEmptyCandidates = errors.New("candidate set is empty")
)

type InputError struct {
	fields map[string][]string
}

func NewInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) Empty() bool {
	return len(ie.fields) == 0
}

func (ie *InputError) AddError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

// Merge copies the fields of other into ie.
func (ie *InputError) Merge(other *InputError) {
	if other == nil {
		return
	}

	for field, msgs := range other.fields {
		ie.fields[field] = append(ie.fields[field], msgs...)
	}
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("%+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}
