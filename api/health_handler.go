package api

import (
	"net/http"
	"time"

	"github.com/raushankrgupta/fitly-closet/utils"
)

// HealthHandler reports service liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "fitly-closet",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
