package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HeroHandler proxies the Unsplash search API for the landing page's hero
// images. The call is fully fail-soft: no key, a slow upstream or a bad
// payload all produce an empty array, and the frontend falls back to its
// bundled images.
type HeroHandler struct {
	AccessKey string
	BaseURL   string // overridable in tests; defaults to the Unsplash API
	Client    *http.Client
}

func NewHeroHandler(accessKey string) *HeroHandler {
	return &HeroHandler{
		AccessKey: accessKey,
		BaseURL:   "https://api.unsplash.com",
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// HeroImages handles GET /api/hero-images and returns up to four image
// URLs.
func (h *HeroHandler) HeroImages(c echo.Context) error {
	empty := []string{}
	if h.AccessKey == "" {
		return c.JSON(http.StatusOK, empty)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	url := h.BaseURL + "/search/photos?query=award%20ceremony&per_page=20&orientation=landscape"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.JSON(http.StatusOK, empty)
	}
	req.Header.Set("Accept-Version", "v1")
	req.Header.Set("Authorization", "Client-ID "+h.AccessKey)

	resp, err := h.Client.Do(req)
	if err != nil {
		return c.JSON(http.StatusOK, empty)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.JSON(http.StatusOK, empty)
	}

	var payload struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return c.JSON(http.StatusOK, empty)
	}
	urls := empty
	for _, it := range payload.Results {
		if it.URLs.Regular != "" {
			urls = append(urls, it.URLs.Regular)
		}
		if len(urls) == 4 {
			break
		}
	}
	return c.JSON(http.StatusOK, urls)
}
