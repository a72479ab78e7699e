package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"flowlearn_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIService_ChatJSON(t *testing.T) {
	t.Run("requests json mode and returns the first choice", func(t *testing.T) {
		var gotReq ChatCompletionRequest
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"score\": 90}"}}]}`))
		}))
		defer server.Close()

		svc := NewAIService(config.AIConfig{BaseURL: server.URL, APIKey: "sk-test", Model: "gpt-4o-mini"})
		reply, err := svc.ChatJSON(context.Background(), "grade workflows", "grade this")
		require.NoError(t, err)

		assert.Equal(t, `{"score": 90}`, reply)
		assert.Equal(t, "Bearer sk-test", gotAuth)
		assert.Equal(t, "gpt-4o-mini", gotReq.Model)
		require.NotNil(t, gotReq.ResponseFormat)
		assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
		require.Len(t, gotReq.Messages, 2)
		assert.Equal(t, "system", gotReq.Messages[0].Role)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		svc := NewAIService(config.AIConfig{BaseURL: server.URL, APIKey: "sk-test"})
		_, err := svc.ChatJSON(context.Background(), "", "hi")
		assert.Error(t, err)
	})

	t.Run("missing API key fails before any request", func(t *testing.T) {
		svc := NewAIService(config.AIConfig{})
		_, err := svc.Chat(context.Background(), "", "hi")
		assert.Error(t, err)
	})
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain json untouched", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFences(tc.in))
		})
	}
}
