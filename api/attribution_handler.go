package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fitly-closet/config"
	"github.com/raushankrgupta/fitly-closet/services"
	"github.com/raushankrgupta/fitly-closet/utils"
)

// AttributeClothesHandler processes uploaded clothing images and extracts
// attributes into the caller's closet.
func AttributeClothesHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Attribute Clothes API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := requestUserID(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusUnauthorized)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("user=%s", userID))

	// Multipart memory cap; larger parts spill to temp files.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Invalid multipart request: %v", err), http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		utils.RespondError(w, &logMessageBuilder, "No files provided", http.StatusBadRequest)
		return
	}
	if len(fileHeaders) > config.MaxBatchSize {
		utils.RespondError(w, &logMessageBuilder,
			fmt.Sprintf("Too many files. Maximum allowed: %d", config.MaxBatchSize), http.StatusBadRequest)
		return
	}

	uploads := make([]services.Upload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		file, err := fh.Open()
		if err != nil {
			utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to open uploaded file %s: %v", fh.Filename, err), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to read uploaded file %s: %v", fh.Filename, err), http.StatusBadRequest)
			return
		}
		uploads = append(uploads, services.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	response := attributionService.ProcessBatch(r.Context(), userID, uploads)
	utils.AddToLogMessage(&logMessageBuilder,
		fmt.Sprintf("processed=%d success=%d failed=%d", response.TotalImages, response.SuccessfulAnalyses, response.FailedAnalyses))
	utils.RespondJSON(w, http.StatusOK, response)
}

// requestUserID resolves the caller's identity from the bearer token, falling
// back to an explicit user_id form/query value for unauthenticated clients.
func requestUserID(r *http.Request) (string, error) {
	if userID, err := utils.UserIDFromRequest(r); err == nil {
		return userID, nil
	}
	if userID := strings.TrimSpace(r.FormValue("user_id")); userID != "" {
		return userID, nil
	}
	return "", fmt.Errorf("user identity required: provide a Bearer token or user_id")
}
