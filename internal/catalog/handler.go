package catalog

import (
	"net/http"

	"rentalbackend/internal/middleware"
)

// CatalogHandler serves GET /catalog with the full mascot list.
func (s *Service) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		middleware.WriteAPIError(w, r, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method not allowed", "")
		return
	}

	middleware.WriteAPISuccess(w, r, http.StatusOK, s.Items())
}
