// Package httpjson reads and writes the JSON bodies used by the api
// packages.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type (
	// InvalidPayload is returned when a request body cannot be decoded or
	// does not pass validation.
	InvalidPayload struct {
		Fields []string
		cause  error
	}

	message struct {
		Message string `json:"message"`
	}
)

const (
	maxBodySize = 1 << 20
)

var (
	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields using the names clients send
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (i InvalidPayload) Error() string {
	if len(i.Fields) > 0 {
		return fmt.Sprintf("invalid payload, check fields: %v", strings.Join(i.Fields, ", "))
	}
	return fmt.Sprintf("invalid payload, cause %v", i.cause)
}

func (i InvalidPayload) Unwrap() error {
	return i.cause
}

// Decode reads a JSON object from r into out and validates it using the
// `validate` struct tags.
func Decode(r *http.Request, out interface{}) error {
	if r.Body == nil {
		return InvalidPayload{cause: io.EOF}
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(out); err != nil {
		return InvalidPayload{cause: err}
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			ip := InvalidPayload{cause: err}
			for _, fe := range verrs {
				ip.Fields = append(ip.Fields, fe.Field())
			}
			return ip
		}
		return InvalidPayload{cause: err}
	}
	return nil
}

func Write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Message writes {"message": msg} with the given status
func Message(w http.ResponseWriter, status int, msg string) {
	Write(w, status, message{Message: msg})
}
