package service

import (
	"errors"
	"net/http"

	"github.com/studiodesk/gridbrowser/grid"
	"github.com/studiodesk/gridbrowser/model"
)

var (
	// ErrInvalidParameter is returned when a query parameter cannot be parsed
	ErrInvalidParameter = errors.New("invalid parameter")
)

// statusFor maps an error to the HTTP status reported to clients
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidParameter),
		errors.Is(err, grid.ErrInvalidItemHeight),
		errors.Is(err, grid.ErrInvalidContainerHeight),
		errors.Is(err, grid.ErrColumnNotSortable),
		errors.Is(err, grid.ErrColumnNotFilterable):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDatasetNotFound),
		errors.Is(err, model.ErrRecordNotFound),
		errors.Is(err, model.ErrUnknownField),
		errors.Is(err, grid.ErrUnknownColumn):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
