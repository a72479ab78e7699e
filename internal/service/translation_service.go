package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flowlearn_backend/internal/config"
	"flowlearn_backend/internal/model"
	"flowlearn_backend/pkg/logger"
	"flowlearn_backend/pkg/monitoring"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type translationCache interface {
	Find(textHash, sourceLang, targetLang string) (*model.Translation, error)
	Upsert(t *model.Translation) error
}

type translationProvider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// TranslationService implements cache-aside translation: redis first, then
// the durable MySQL cache, then the external provider. Keys are the exact
// (text, sourceLang, targetLang) triple with no normalization.
type TranslationService struct {
	Cache    translationCache
	Provider translationProvider
	Redis    *redis.Client
}

func NewTranslationService(cache translationCache, provider translationProvider, rdb *redis.Client) *TranslationService {
	return &TranslationService{
		Cache:    cache,
		Provider: provider,
		Redis:    rdb,
	}
}

type TranslateResult struct {
	TranslatedText string `json:"translatedText"`
	Cached         bool   `json:"cached"`
	Usage          Usage  `json:"usage"`
}

type Usage struct {
	Characters int `json:"characters"`
}

const translationRedisTTL = 24 * time.Hour

func translationKey(text, sourceLang, targetLang string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:]) + ":" + sourceLang + ":" + targetLang
}

// Translate returns the cached translation for an exact triple, or calls
// the provider and persists the result. A hit reports zero usage.
func (s *TranslationService) Translate(ctx context.Context, text, sourceLang, targetLang, contentType, contentID string) (*TranslateResult, error) {
	sum := sha256.Sum256([]byte(text))
	textHash := hex.EncodeToString(sum[:])

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, "translation:"+translationKey(text, sourceLang, targetLang)).Result(); err == nil {
			monitoring.TranslationCacheHits.WithLabelValues("hit").Inc()
			return &TranslateResult{TranslatedText: val, Cached: true}, nil
		}
	}

	cached, err := s.Cache.Find(textHash, sourceLang, targetLang)
	if err == nil {
		monitoring.TranslationCacheHits.WithLabelValues("hit").Inc()
		s.warmRedis(ctx, text, sourceLang, targetLang, cached.TranslatedText)
		return &TranslateResult{TranslatedText: cached.TranslatedText, Cached: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	translated, err := s.Provider.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		monitoring.TranslationCacheHits.WithLabelValues("error").Inc()
		return nil, err
	}

	entry := &model.Translation{
		TextHash:       textHash,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		SourceText:     text,
		TranslatedText: translated,
		ContentType:    contentType,
		ContentID:      contentID,
	}
	if err := s.Cache.Upsert(entry); err != nil {
		// The translation itself succeeded; a failed cache write only
		// costs a duplicate provider call next time.
		logger.Log.Warn("translation cache write failed", zap.Error(err))
	}
	s.warmRedis(ctx, text, sourceLang, targetLang, translated)

	monitoring.TranslationCacheHits.WithLabelValues("miss").Inc()
	return &TranslateResult{
		TranslatedText: translated,
		Cached:         false,
		Usage:          Usage{Characters: len(text)},
	}, nil
}

func (s *TranslationService) warmRedis(ctx context.Context, text, sourceLang, targetLang, translated string) {
	if s.Redis == nil {
		return
	}
	key := "translation:" + translationKey(text, sourceLang, targetLang)
	if err := s.Redis.Set(ctx, key, translated, translationRedisTTL).Err(); err != nil {
		logger.Log.Warn("redis translation warm failed", zap.Error(err))
	}
}

// DeepLClient is the external provider used in production.
type DeepLClient struct {
	config config.DeepLConfig
	client *http.Client
}

func NewDeepLClient(cfg config.DeepLConfig) *DeepLClient {
	return &DeepLClient{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type deepLResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

func (c *DeepLClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if c.config.APIKey == "" {
		return "", fmt.Errorf("DeepL API key is not configured")
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("source_lang", strings.ToUpper(sourceLang))
	form.Set("target_lang", strings.ToUpper(targetLang))

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w (status %d): %s", errProviderStatus(resp.StatusCode), resp.StatusCode, string(body))
	}

	var result deepLResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Translations) == 0 {
		return "", fmt.Errorf("translation provider returned no translations")
	}

	return result.Translations[0].Text, nil
}

// ProviderStatusError carries the provider's HTTP status so the handler can
// forward it instead of a generic 500.
type ProviderStatusError struct {
	Status int
}

func (e *ProviderStatusError) Error() string {
	return fmt.Sprintf("translation provider error (status %d)", e.Status)
}

func errProviderStatus(status int) error {
	return &ProviderStatusError{Status: status}
}
