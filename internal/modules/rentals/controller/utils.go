package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"bikerental-server/internal/modules/rentals/service"
	"bikerental-server/internal/modules/rentals/types"
)

type rangeQuery struct {
	Start string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" validate:"omitempty,datetime=2006-01-02"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseRangeQuery reads start and end (YYYY-MM-DD) from the query string.
// A missing start means the first date and a missing end means the last.
func parseRangeQuery(r *http.Request, b types.Bounds) (types.DateRange, error) {
	q := r.URL.Query()
	in := rangeQuery{
		Start: strings.TrimSpace(q.Get("start")),
		End:   strings.TrimSpace(q.Get("end")),
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return types.DateRange{}, errors.New(formatValidationError(verrs[0]))
		}
		return types.DateRange{}, err
	}

	rng := service.ResolveRange(b, in.Start, in.End)
	if rng.Start > rng.End {
		return types.DateRange{}, errors.New("'start' must be <= 'end'")
	}
	if rng.Start < b.Min || rng.Start > b.Max {
		return types.DateRange{}, fmt.Errorf("'start' must be between %s and %s", b.Min, b.Max)
	}
	if rng.End < b.Min || rng.End > b.Max {
		return types.DateRange{}, fmt.Errorf("'end' must be between %s and %s", b.Min, b.Max)
	}
	return rng, nil
}

func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "datetime":
		return fmt.Sprintf("invalid '%s' (expected %s)", err.Field(), "YYYY-MM-DD")
	default:
		return fmt.Sprintf("invalid '%s'", err.Field())
	}
}

// pageURL is the full dashboard URL for rng.
func pageURL(rng types.DateRange) string {
	q := url.Values{}
	q.Set("start", rng.Start)
	q.Set("end", rng.End)
	return "/?" + q.Encode()
}

func exportFilename(rng types.DateRange) string {
	return fmt.Sprintf("bike-rentals_%s_%s.xlsx", rng.Start, rng.End)
}
