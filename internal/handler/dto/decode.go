package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/jellydator/validation"
)

// Decode errors.
var (
	ErrInvalidBody          = errors.New("invalid request body")
	ErrUnsupportedMediaType = errors.New("unsupported content type")
	ErrBodyTooLarge         = errors.New("request body too large")
)

const maxMultipartMemory = 1 << 20

// FormBinder is implemented by requests that can be submitted as HTML forms.
type FormBinder interface {
	BindForm(values url.Values) error
}

// ValidationError carries the field messages of a payload that failed validation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DecodeAndValidate reads a JSON or form-encoded body into object and, when
// object is validation.Validatable, validates it.
// An empty JSON body decodes as an empty object.
func DecodeAndValidate(r *http.Request, object any) error {
	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
		}
		mediaType = parsed
	}

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := decodeForm(r, mediaType, object); err != nil {
			return err
		}
	case "", "application/json":
		if err := decodeJSON(r, object); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}

	return validatePayload(object)
}

func decodeJSON(r *http.Request, object any) error {
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(object)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case isTooLarge(err):
		return ErrBodyTooLarge
	default:
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
}

func decodeForm(r *http.Request, mediaType string, object any) error {
	binder, ok := object.(FormBinder)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxMultipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		if isTooLarge(err) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	return binder.BindForm(r.PostForm)
}

func validatePayload(object any) error {
	v, ok := object.(validation.Validatable)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
