package agent_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-supportdesk/agent"
)

func sseServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/responses", r.URL.Path)

		body := map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "text/event-stream")
		handler(w, body)
	}))
}

func TestClient_Respond(t *testing.T) {
	t.Run("collects deltas in order", func(t *testing.T) {
		srv := sseServer(t, func(w http.ResponseWriter, body map[string]any) {
			fmt.Fprint(w, "event: response.output_text.delta\n")
			fmt.Fprint(w, `data: {"type":"response.output_text.delta","delta":"Hello"}`+"\n\n")
			fmt.Fprint(w, `data: {"type":"response.output_text.delta","delta":" world"}`+"\n\n")
			fmt.Fprint(w, "data: [DONE]\n\n")
		})
		defer srv.Close()

		client := agent.NewClient(srv.URL, "test-key", "test-model")

		var deltas []string
		text, err := client.Respond(context.Background(), []agent.Turn{
			{Role: "user", Content: "hi"},
		}, func(delta string) error {
			deltas = append(deltas, delta)
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, "Hello world", text)
		assert.Equal(t, []string{"Hello", " world"}, deltas)
	})

	t.Run("sends model, turns and auth header", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")

			body := map[string]any{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "test-model", body["model"])
			assert.Equal(t, true, body["stream"])

			input, ok := body["input"].([]any)
			require.True(t, ok)
			require.Len(t, input, 1)

			fmt.Fprint(w, `data: {"type":"response.output_text.done","text":"ok"}`+"\n\n")
		}))
		defer srv.Close()

		client := agent.NewClient(srv.URL, "test-key", "test-model")

		text, err := client.Respond(context.Background(), []agent.Turn{
			{Role: "user", Content: "hi"},
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, "Bearer test-key", gotAuth)
	})

	t.Run("done event does not duplicate collected deltas", func(t *testing.T) {
		srv := sseServer(t, func(w http.ResponseWriter, body map[string]any) {
			fmt.Fprint(w, `data: {"type":"response.output_text.delta","delta":"partial"}`+"\n\n")
			fmt.Fprint(w, `data: {"type":"response.output_text.done","text":"partial"}`+"\n\n")
		})
		defer srv.Close()

		client := agent.NewClient(srv.URL, "", "test-model")

		text, err := client.Respond(context.Background(), nil, nil)

		require.NoError(t, err)
		assert.Equal(t, "partial", text)
	})

	t.Run("runtime failure event surfaces as error", func(t *testing.T) {
		srv := sseServer(t, func(w http.ResponseWriter, body map[string]any) {
			fmt.Fprint(w, `data: {"type":"response.failed","error":{"message":"model overloaded"}}`+"\n\n")
		})
		defer srv.Close()

		client := agent.NewClient(srv.URL, "", "test-model")

		_, err := client.Respond(context.Background(), nil, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "model overloaded")
	})

	t.Run("non 200 response surfaces as error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer srv.Close()

		client := agent.NewClient(srv.URL, "", "test-model")

		_, err := client.Respond(context.Background(), nil, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("delta callback error aborts the stream", func(t *testing.T) {
		srv := sseServer(t, func(w http.ResponseWriter, body map[string]any) {
			fmt.Fprint(w, `data: {"type":"response.output_text.delta","delta":"a"}`+"\n\n")
			fmt.Fprint(w, `data: {"type":"response.output_text.delta","delta":"b"}`+"\n\n")
		})
		defer srv.Close()

		client := agent.NewClient(srv.URL, "", "test-model")

		_, err := client.Respond(context.Background(), nil, func(delta string) error {
			return fmt.Errorf("client went away")
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "client went away")
	})
}
