package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muandane/special-stack/memes/internal/cache"
	"github.com/muandane/special-stack/memes/internal/catalog"
)

type StatsSource interface {
	Stats() cache.Stats
}

type CatalogSource interface {
	Catalog() *catalog.Catalog
}

type CatalogStats struct {
	Count      int       `json:"count"`
	Generation uint64    `json:"generation"`
	BuiltAt    time.Time `json:"built_at"`
}

type StatsResponse struct {
	Cache   cache.Stats  `json:"cache"`
	Catalog CatalogStats `json:"catalog"`
}

type StatsHandler struct {
	store   StatsSource
	catalog CatalogSource
}

func NewStatsHandler(store StatsSource, catalog CatalogSource) *StatsHandler {
	return &StatsHandler{store: store, catalog: catalog}
}

func (h *StatsHandler) ServeHTTP(c *gin.Context) {
	current := h.catalog.Catalog()
	c.JSON(http.StatusOK, StatsResponse{
		Cache: h.store.Stats(),
		Catalog: CatalogStats{
			Count:      current.Len(),
			Generation: current.Generation(),
			BuiltAt:    current.BuiltAt(),
		},
	})
}
