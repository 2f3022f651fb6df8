package requests

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"infinite-experiment/flightboard/internal/models/dtos/responses"

	"github.com/go-playground/validator/v10"
)

var (
	flightCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
	gateCodePattern   = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)
	placeNamePattern  = regexp.MustCompile(`^[A-Za-z][A-Za-z '\-]{1,99}$`)
)

type CreateFlightRequest struct {
	FlightNumber  string     `json:"flightNumber" validate:"required,flightcode"`
	Destination   string     `json:"destination" validate:"required,placename"`
	DepartureTime *time.Time `json:"departureTime" validate:"required"`
	Gate          string     `json:"gate" validate:"required,gatecode"`
}

// Normalize trims surrounding whitespace.
func (r *CreateFlightRequest) Normalize() {
	r.FlightNumber = strings.TrimSpace(r.FlightNumber)
	r.Destination = strings.TrimSpace(r.Destination)
	r.Gate = strings.TrimSpace(r.Gate)
}

// UpdateFlightRequest carries optional fields. Blank strings count as absent.
type UpdateFlightRequest struct {
	Destination   *string    `json:"destination,omitempty" validate:"omitempty,placename"`
	DepartureTime *time.Time `json:"departureTime,omitempty"`
	Gate          *string    `json:"gate,omitempty" validate:"omitempty,gatecode"`
}

func (r *UpdateFlightRequest) Normalize() {
	r.Destination = blankToNil(r.Destination)
	r.Gate = blankToNil(r.Gate)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NewValidator returns a validator with the flight board rules registered.
// Field errors are reported under their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("flightcode", matcher(flightCodePattern))
	_ = v.RegisterValidation("gatecode", matcher(gateCodePattern))
	_ = v.RegisterValidation("placename", matcher(placeNamePattern))

	return v
}

func matcher(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

var ruleMessages = map[string]string{
	"required":   "is required",
	"flightcode": "must be 2-10 uppercase letters or digits",
	"gatecode":   "must be 1-5 uppercase letters or digits",
	"placename":  "must be 2-100 letters, spaces, hyphens or apostrophes",
}

// FieldErrors flattens a validation failure into per-field messages.
func FieldErrors(err error) []responses.FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	out := make([]responses.FieldError, 0, len(ve))
	for _, fe := range ve {
		msg, ok := ruleMessages[fe.Tag()]
		if !ok {
			msg = "failed " + fe.Tag()
		}
		out = append(out, responses.FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
