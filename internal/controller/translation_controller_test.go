package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flowlearn_backend/internal/model"
	"flowlearn_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubTranslationCache struct{}

func (stubTranslationCache) Find(textHash, sourceLang, targetLang string) (*model.Translation, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubTranslationCache) Upsert(t *model.Translation) error { return nil }

type stubProvider struct {
	calls int
	err   error
}

func (s *stubProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "Hallo", nil
}

func newTranslationRouter(provider *stubProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewTranslationService(stubTranslationCache{}, provider, nil)
	ctrl := NewTranslationController(svc)

	router := gin.New()
	router.POST("/api/translate", ctrl.Translate)
	return router
}

func TestTranslationController_Translate(t *testing.T) {
	t.Run("translates on a good request", func(t *testing.T) {
		provider := &stubProvider{}
		router := newTranslationRouter(provider)

		w := httptest.NewRecorder()
		body := `{"text": "Hello", "sourceLanguage": "en", "targetLanguage": "de"}`
		req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Hallo")
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("missing target language is rejected before the provider", func(t *testing.T) {
		provider := &stubProvider{}
		router := newTranslationRouter(provider)

		w := httptest.NewRecorder()
		body := `{"text": "Hello", "sourceLanguage": "en"}`
		req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, provider.calls)
	})

	t.Run("provider status is forwarded", func(t *testing.T) {
		provider := &stubProvider{err: &service.ProviderStatusError{Status: http.StatusTooManyRequests}}
		router := newTranslationRouter(provider)

		w := httptest.NewRecorder()
		body := `{"text": "Hello", "sourceLanguage": "en", "targetLanguage": "de"}`
		req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}
