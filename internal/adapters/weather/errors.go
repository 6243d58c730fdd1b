package weather

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrNotFound: la ubicación no existe (404 o geocoding vacío).
var ErrNotFound = errors.New("weather: not found")

type APIError struct {
	Service string
	Status  int
	Body    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api status %d: %s", e.Service, e.Status, e.Body)
}
