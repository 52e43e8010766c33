package advice

import "errors"

var ErrEmptyCompletion = errors.New("completion returned no text")
