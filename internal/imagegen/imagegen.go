// Package imagegen renders a compiled prompt to an image through the Gemini
// Imagen API. Results are cached by prompt and calls are rate limited.
package imagegen

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/joestump/kernel-prism/internal/config"
	"github.com/joestump/kernel-prism/internal/metrics"
)

var (
	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("image generation is not configured")
	// ErrNoImage is returned when the upstream call succeeds with no image.
	ErrNoImage = errors.New("no image returned")
	// ErrRateLimited is returned when the per-process render budget is spent.
	ErrRateLimited = errors.New("image generation rate limit exceeded")
)

// Image is a rendered image.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURL encodes the image as a data: URL suitable for an <img> src.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Generator renders prompts to images.
type Generator interface {
	Render(ctx context.Context, prompt string) (*Image, error)
}

// imageModel is the slice of the genai client the service calls.
type imageModel interface {
	GenerateImages(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Service is the cached, rate-limited Generator.
type Service struct {
	models      imageModel
	model       string
	aspectRatio string
	cache       *cache.Cache
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// New returns a Service for cfg, or ErrDisabled when no API key is set.
func New(ctx context.Context, cfg config.ImageGenConfig, logger *zap.Logger) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, ErrDisabled
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newService(client.Models, cfg, logger), nil
}

func newService(m imageModel, cfg config.ImageGenConfig, logger *zap.Logger) *Service {
	perCall := time.Minute / time.Duration(max(cfg.RatePerMinute, 1))
	return &Service{
		models:      m,
		model:       cfg.Model,
		aspectRatio: cfg.AspectRatio,
		cache:       cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		limiter:     rate.NewLimiter(rate.Every(perCall), max(cfg.RatePerMinute, 1)),
		logger:      logger,
	}
}

// Render returns the image for prompt, from cache when the same prompt was
// rendered within the cache TTL. Cache hits do not spend rate budget.
func (s *Service) Render(ctx context.Context, prompt string) (*Image, error) {
	key := cacheKey(s.model, s.aspectRatio, prompt)
	if v, ok := s.cache.Get(key); ok {
		metrics.ImageRendersTotal.WithLabelValues("cached").Inc()
		return v.(*Image), nil
	}
	if !s.limiter.Allow() {
		metrics.ImageRendersTotal.WithLabelValues("limited").Inc()
		return nil, ErrRateLimited
	}

	start := time.Now()
	resp, err := s.models.GenerateImages(ctx, s.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    s.aspectRatio,
	})
	metrics.ImageRenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ImageRendersTotal.WithLabelValues("error").Inc()
		s.logger.Warn("image generation failed", zap.String("model", s.model), zap.Error(err))
		return nil, fmt.Errorf("generate image: %w", err)
	}

	img, err := firstImage(resp)
	if err != nil {
		metrics.ImageRendersTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	s.cache.SetDefault(key, img)
	metrics.ImageRendersTotal.WithLabelValues("ok").Inc()
	s.logger.Debug("image rendered", zap.Int("bytes", len(img.Data)), zap.Duration("took", time.Since(start)))
	return img, nil
}

func firstImage(resp *genai.GenerateImagesResponse) (*Image, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, ErrNoImage
	}
	gi := resp.GeneratedImages[0]
	if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
		return nil, ErrNoImage
	}
	mime := gi.Image.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return &Image{MIMEType: mime, Data: gi.Image.ImageBytes}, nil
}

func cacheKey(model, aspect, prompt string) string {
	h := sha256.Sum256([]byte(model + "\x00" + aspect + "\x00" + prompt))
	return hex.EncodeToString(h[:])
}
