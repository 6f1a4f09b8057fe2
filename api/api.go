package api

import (
	"github.com/raushankrgupta/fitly-closet/blob"
	"github.com/raushankrgupta/fitly-closet/services"
	"github.com/raushankrgupta/fitly-closet/store"
)

// Package-level dependencies, wired once at startup from main.
var (
	attributionService *services.AttributionService
	stylerService      *services.StylerService
	itemStore          *store.Store
	blobStore          blob.Store
)

// Setup injects the handlers' dependencies. Must be called before serving.
func Setup(attribution *services.AttributionService, stylerSvc *services.StylerService, items *store.Store, blobs blob.Store) {
	attributionService = attribution
	stylerService = stylerSvc
	itemStore = items
	blobStore = blobs
}
