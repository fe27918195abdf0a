package http

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"pesatrack/internal/core"
)

const dateParamLayout = "2006-01-02"

// parseTransactionQuery maps the list/export query string onto a core.Query.
// Parse failures wrap core.ErrInvalidQuery so handlers can answer 400.
func parseTransactionQuery(values url.Values) (core.Query, error) {
	q := core.Query{
		Text:     values.Get("q"),
		Category: values.Get("type"),
		Page:     1,
		PageSize: 20,
	}

	var err error
	if q.Start, err = parseDateParam(values, "start"); err != nil {
		return core.Query{}, err
	}
	if q.End, err = parseDateParam(values, "end"); err != nil {
		return core.Query{}, err
	}
	if q.MinAmount, err = parseFloatParam(values, "min"); err != nil {
		return core.Query{}, err
	}
	if q.MaxAmount, err = parseFloatParam(values, "max"); err != nil {
		return core.Query{}, err
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return core.Query{}, fmt.Errorf("%w: page must be a positive integer, got %q", core.ErrInvalidQuery, raw)
		}
		q.Page = page
	}
	if raw := values.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return core.Query{}, fmt.Errorf("%w: page_size must be a positive integer, got %q", core.ErrInvalidQuery, raw)
		}
		if size > 100 {
			size = 100
		}
		q.PageSize = size
	}
	return q, nil
}

// parseLimitParam reads the top-expenses limit, defaulting to 5 and rejecting
// anything outside 1..50.
func parseLimitParam(values url.Values) (int, error) {
	raw := values.Get("limit")
	if raw == "" {
		return 5, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 50 {
		return 0, fmt.Errorf("%w: limit must be between 1 and 50, got %q", core.ErrInvalidQuery, raw)
	}
	return limit, nil
}

func parseDateParam(values url.Values, name string) (time.Time, error) {
	raw := values.Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateParamLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", core.ErrInvalidQuery, name, raw)
	}
	return t, nil
}

func parseFloatParam(values url.Values, name string) (*float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", core.ErrInvalidQuery, name, raw)
	}
	return &v, nil
}
