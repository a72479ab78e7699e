package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"flowlearn_backend/internal/config"
	"flowlearn_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTranslationCache struct {
	entries map[string]*model.Translation
	upserts int
}

func newFakeTranslationCache() *fakeTranslationCache {
	return &fakeTranslationCache{entries: map[string]*model.Translation{}}
}

func (f *fakeTranslationCache) key(textHash, sourceLang, targetLang string) string {
	return textHash + "|" + sourceLang + "|" + targetLang
}

func (f *fakeTranslationCache) Find(textHash, sourceLang, targetLang string) (*model.Translation, error) {
	if t, ok := f.entries[f.key(textHash, sourceLang, targetLang)]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTranslationCache) Upsert(t *model.Translation) error {
	f.upserts++
	f.entries[f.key(t.TextHash, t.SourceLang, t.TargetLang)] = t
	return nil
}

type fakeTranslationProvider struct {
	calls int
	err   error
}

func (f *fakeTranslationProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "[" + targetLang + "] " + text, nil
}

func TestTranslationService_Translate(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit calls provider once", func(t *testing.T) {
		cache := newFakeTranslationCache()
		provider := &fakeTranslationProvider{}
		svc := NewTranslationService(cache, provider, nil)

		first, err := svc.Translate(ctx, "Build a webhook trigger", "en", "de", "challenge", "12")
		require.NoError(t, err)
		assert.False(t, first.Cached)
		assert.Equal(t, "[de] Build a webhook trigger", first.TranslatedText)
		assert.Equal(t, len("Build a webhook trigger"), first.Usage.Characters)

		second, err := svc.Translate(ctx, "Build a webhook trigger", "en", "de", "challenge", "12")
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, first.TranslatedText, second.TranslatedText)
		assert.Zero(t, second.Usage.Characters)

		assert.Equal(t, 1, provider.calls)
		assert.Equal(t, 1, cache.upserts)
	})

	t.Run("lookup preserves case", func(t *testing.T) {
		cache := newFakeTranslationCache()
		provider := &fakeTranslationProvider{}
		svc := NewTranslationService(cache, provider, nil)

		_, err := svc.Translate(ctx, "Hello", "en", "de", "", "")
		require.NoError(t, err)
		_, err = svc.Translate(ctx, "hello", "en", "de", "", "")
		require.NoError(t, err)

		assert.Equal(t, 2, provider.calls)
	})

	t.Run("different target language is a distinct entry", func(t *testing.T) {
		cache := newFakeTranslationCache()
		provider := &fakeTranslationProvider{}
		svc := NewTranslationService(cache, provider, nil)

		_, err := svc.Translate(ctx, "Hello", "en", "de", "", "")
		require.NoError(t, err)
		_, err = svc.Translate(ctx, "Hello", "en", "fr", "", "")
		require.NoError(t, err)

		assert.Equal(t, 2, provider.calls)
	})

	t.Run("provider failure caches nothing", func(t *testing.T) {
		cache := newFakeTranslationCache()
		provider := &fakeTranslationProvider{err: errors.New("quota exceeded")}
		svc := NewTranslationService(cache, provider, nil)

		_, err := svc.Translate(ctx, "Hello", "en", "de", "", "")
		require.Error(t, err)
		assert.Zero(t, cache.upserts)
	})
}

func TestDeepLClient(t *testing.T) {
	t.Run("sends form request with auth key", func(t *testing.T) {
		var gotAuth, gotSource, gotTarget, gotText string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotAuth = r.Header.Get("Authorization")
			gotSource = r.PostFormValue("source_lang")
			gotTarget = r.PostFormValue("target_lang")
			gotText = r.PostFormValue("text")
			w.Write([]byte(`{"translations": [{"text": "Hallo"}]}`))
		}))
		defer server.Close()

		client := NewDeepLClient(config.DeepLConfig{BaseURL: server.URL, APIKey: "test-key"})
		translated, err := client.Translate(context.Background(), "Hello", "en", "de")
		require.NoError(t, err)

		assert.Equal(t, "Hallo", translated)
		assert.Equal(t, "DeepL-Auth-Key test-key", gotAuth)
		assert.Equal(t, "EN", gotSource)
		assert.Equal(t, "DE", gotTarget)
		assert.Equal(t, "Hello", gotText)
	})

	t.Run("non-200 surfaces the provider status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewDeepLClient(config.DeepLConfig{BaseURL: server.URL, APIKey: "test-key"})
		_, err := client.Translate(context.Background(), "Hello", "en", "de")
		require.Error(t, err)

		var statusErr *ProviderStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusTooManyRequests, statusErr.Status)
	})

	t.Run("missing API key fails fast", func(t *testing.T) {
		client := NewDeepLClient(config.DeepLConfig{BaseURL: "http://localhost"})
		_, err := client.Translate(context.Background(), "Hello", "en", "de")
		assert.Error(t, err)
	})
}
