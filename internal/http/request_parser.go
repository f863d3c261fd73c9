package http

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"txdash/internal/core"
	"txdash/internal/services"
)

// MaxSearchLength bounds the search query parameter.
const MaxSearchLength = 256

var queryValidate = newQueryValidator()

func newQueryValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("monthname", func(fl validator.FieldLevel) bool {
		_, err := core.ParseMonth(fl.Field().String())
		return err == nil
	})
	return v
}

type (
	monthQuery struct {
		Month string `query:"month" validate:"monthname"`
	}

	listQuery struct {
		Month   string `query:"month" validate:"monthname"`
		Page    int    `query:"page" validate:"gte=1"`
		PerPage int    `query:"perPage" validate:"gte=1,lte=100"`
		Search  string `query:"search" validate:"max=256"`
	}
)

// ValidationError names the offending query parameter. For month failures it
// wraps core.ErrMissingMonth or core.ErrUnknownMonth.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// parseMonth reads and validates the required month parameter.
func parseMonth(q url.Values) (time.Month, error) {
	mq := monthQuery{Month: q.Get("month")}
	if err := queryValidate.Struct(mq); err != nil {
		return 0, translate(err)
	}
	m, _ := core.ParseMonth(mq.Month)
	return m, nil
}

// parseList reads month, page, perPage and search. The search term is passed
// through verbatim.
func parseList(q url.Values) (services.ListParams, error) {
	page, err := intParam(q, "page", core.DefaultPage)
	if err != nil {
		return services.ListParams{}, err
	}
	perPage, err := intParam(q, "perPage", core.DefaultPerPage)
	if err != nil {
		return services.ListParams{}, err
	}

	lq := listQuery{
		Month:   q.Get("month"),
		Page:    page,
		PerPage: perPage,
		Search:  q.Get("search"),
	}
	if err := queryValidate.Struct(lq); err != nil {
		return services.ListParams{}, translate(err)
	}

	m, _ := core.ParseMonth(lq.Month)
	return services.ListParams{
		Month:   m,
		Page:    lq.Page,
		PerPage: lq.PerPage,
		Search:  lq.Search,
	}, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: key, Message: fmt.Sprintf("%s must be a positive integer", key)}
	}
	return n, nil
}

// translate turns the first validator failure into a ValidationError.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Field()

	switch fe.Tag() {
	case "monthname":
		raw, _ := fe.Value().(string)
		_, perr := core.ParseMonth(raw)
		if errors.Is(perr, core.ErrMissingMonth) {
			return &ValidationError{Field: field, Message: "month is required", Err: perr}
		}
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid month %q: expected a full month name such as March", raw),
			Err:     perr,
		}
	case "gte":
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must be at least %s", field, fe.Param())}
	case "lte":
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %s", field, fe.Param())}
	case "max":
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %s characters", field, fe.Param())}
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is invalid", field)}
	}
}
