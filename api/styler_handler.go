package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fitly-closet/models"
	"github.com/raushankrgupta/fitly-closet/services"
	"github.com/raushankrgupta/fitly-closet/utils"
)

// StyleMeHandler generates an outfit recommendation from the caller's closet.
func StyleMeHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Style Me API]")

	if r.Method != http.MethodGet {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := requestUserID(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusUnauthorized)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("user=%s", userID))

	sc := models.StyleContext{
		City:     r.URL.Query().Get("city"),
		Weather:  r.URL.Query().Get("weather"),
		Occasion: r.URL.Query().Get("occasion"),
	}

	response, err := stylerService.Recommend(r.Context(), userID, sc)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("recommendation failed: %v", err))
		utils.RespondJSON(w, stylerStatusCode(err), response)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder,
		fmt.Sprintf("outfit: top=%s bottom=%s outerwear=%s",
			response.OutfitRecommendation.Top, response.OutfitRecommendation.Bottom, response.OutfitRecommendation.Outerwear))
	utils.RespondJSON(w, http.StatusOK, response)
}

// stylerStatusCode maps recommendation failures to HTTP statuses. The
// structured envelope is returned either way.
func stylerStatusCode(err error) int {
	var validation *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNoClosetData):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoValidItems):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
