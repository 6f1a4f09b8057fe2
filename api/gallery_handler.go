package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/fitly-closet/models"
	"github.com/raushankrgupta/fitly-closet/utils"
)

type closetEntry struct {
	Fingerprint        string             `json:"image_hash"`
	Filename           string             `json:"filename"`
	Attributes         *models.Attributes `json:"attributes,omitempty"`
	ProcessedTimestamp string             `json:"processed_timestamp"`
	ImageURL           string             `json:"image_url,omitempty"`
}

type closetResponse struct {
	Success     bool          `json:"success"`
	TotalImages int           `json:"total_images"`
	Items       []closetEntry `json:"items"`
}

// ClosetHandler lists every processed item in the caller's closet with a
// presigned download URL for each stored image.
func ClosetHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Closet API]")

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

	items, err := itemStore.ListAll(userID)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("list failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to load closet", http.StatusInternalServerError)
		return
	}

	entries := make([]closetEntry, 0, len(items))
	for _, item := range items {
		entry := closetEntry{
			Fingerprint:        item.Fingerprint,
			Filename:           item.Filename,
			Attributes:         item.Attributes,
			ProcessedTimestamp: item.ProcessedTimestamp.Format("2006-01-02T15:04:05Z07:00"),
		}
		if key, ok := item.SavedLocations["processed"]; ok {
			url, err := blobStore.DownloadURL(r.Context(), key)
			if err != nil {
				utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("presign failed for %s: %v", item.Filename, err))
			} else {
				entry.ImageURL = url
			}
		}
		entries = append(entries, entry)
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("returned %d items", len(entries)))
	utils.RespondJSON(w, http.StatusOK, closetResponse{
		Success:     true,
		TotalImages: len(entries),
		Items:       entries,
	})
}
