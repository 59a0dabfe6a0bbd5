package health

import (
	"encoding/json"
	"net/http"
)

// StatusHealthy is the only status this probe reports.
const StatusHealthy = "healthy"

// Response is the payload for the health endpoint.
type Response struct {
	Status string `json:"status"`
}

// Handler is a plain HTTP liveness probe. It always reports healthy and is
// mounted outside the huma API so probes skip content negotiation.
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{Status: StatusHealthy})
}
