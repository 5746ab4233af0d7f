package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/muandane/special-stack/memes/internal/cache"
	"github.com/muandane/special-stack/memes/internal/catalog"
	"github.com/muandane/special-stack/memes/internal/memes"
	"github.com/muandane/special-stack/memes/internal/transform"
)

const (
	countCacheTTL = 5 * time.Minute
	countCacheMax = 8

	noMemesMessage = "No memes found, please add some image files to the images directory first"
	serverMessage  = "Internal server error"
)

// MemeService is the part of memes.Service the HTTP layer needs.
type MemeService interface {
	Random() (catalog.Entry, error)
	Processed(entry catalog.Entry, opts transform.Options) (*memes.Result, error)
	Catalog() *catalog.Catalog
}

type CountResponse struct {
	Count int `json:"count"`
}

type MemeHandler struct {
	memes  MemeService
	counts *cache.Store[int]
	log    zerolog.Logger
}

func NewMemeHandler(svc MemeService, log zerolog.Logger) *MemeHandler {
	return &MemeHandler{
		memes:  svc,
		counts: cache.New[int](countCacheMax, countCacheTTL),
		log:    log.With().Str("component", "memes_handler").Logger(),
	}
}

// Random handles GET /memes/random?width=&height=. Dimensions are parsed by
// middleware.WithDimensions.
func (h *MemeHandler) Random(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")

	entry, err := h.memes.Random()
	if errors.Is(err, catalog.ErrEmpty) {
		h.log.Warn().Msg("no meme files available")
		respondError(c, http.StatusNotFound, noMemesMessage, nil)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("error selecting meme")
		respondError(c, http.StatusInternalServerError, serverMessage, err)
		return
	}

	opts := transform.Options{Width: c.GetInt("width"), Height: c.GetInt("height")}
	result, err := h.memes.Processed(entry, opts)
	if err != nil {
		h.log.Error().Err(err).Str("file", entry.Filename()).Msg("error serving meme file")
		respondError(c, http.StatusInternalServerError, serverMessage, err)
		return
	}

	c.DataFromReader(
		http.StatusOK,
		int64(result.Size),
		result.MimeType,
		bytes.NewReader(result.Data),
		map[string]string{
			"Content-Disposition": mime.FormatMediaType("inline", map[string]string{"filename": result.Filename}),
			"ETag":                `"` + entry.Hash + `"`,
		},
	)
}

// Count handles GET /memes/count. Responses are cached per catalog
// generation, so a rebuild is visible on the next request.
func (h *MemeHandler) Count(c *gin.Context) {
	current := h.memes.Catalog()
	key := fmt.Sprintf("count:%d", current.Generation())

	n, ok := h.counts.Get(key)
	if !ok {
		n = current.Len()
		h.counts.Set(key, n, 0)
	}
	c.JSON(http.StatusOK, CountResponse{Count: n})
}
