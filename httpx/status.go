package httpx

import "net/http"

const (
	StatusOK                 = http.StatusOK                  // Successful request
	StatusNoContent          = http.StatusNoContent           // Successful with no body
	StatusBadRequest         = http.StatusBadRequest          // Invalid filter or page parameters
	StatusUnauthorized       = http.StatusUnauthorized        // Missing or expired access token
	StatusForbidden          = http.StatusForbidden           // Token lacks access to the resource
	StatusNotFound           = http.StatusNotFound            // Unknown id or slug
	StatusTooManyRequests    = http.StatusTooManyRequests     // Upstream rate limiting
	StatusInternalError      = http.StatusInternalServerError // Unexpected server error
	StatusServiceUnavailable = http.StatusServiceUnavailable  // Upstream maintenance
)

// MediaTypeJSONAPI is the content type Kitsu speaks.
const MediaTypeJSONAPI = "application/vnd.api+json"
