package httputil

import (
	"net/http"
	"strconv"

	"github.com/vaxstock/vaxstock-backend/pkg/errors"
)

// MonthParam parses a month index (0 = January .. 11 = December) from a
// path or query value.
func MonthParam(raw string) (int, error) {
	month, err := strconv.Atoi(raw)
	if err != nil || month < 0 || month > 11 {
		return 0, errors.BadRequest("month must be an integer between 0 and 11")
	}
	return month, nil
}

// YearParam parses a four-digit year from a path or query value.
func YearParam(raw string) (int, error) {
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		return 0, errors.BadRequest("year must be a four-digit integer")
	}
	return year, nil
}

// MonthYearQuery parses the month and year query parameters of a request.
func MonthYearQuery(r *http.Request) (month, year int, err error) {
	month, err = MonthParam(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, err
	}
	year, err = YearParam(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, err
	}
	return month, year, nil
}
