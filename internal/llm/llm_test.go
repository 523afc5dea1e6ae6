package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "", srv.URL)
	out, err := c.Complete(context.Background(), Request{SystemPrompt: "sys", UserPrompt: "hi", JSON: true})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"summary":"ok"}` {
		t.Errorf("content = %q", out)
	}
	if got.Model != DefaultOpenAIModel {
		t.Errorf("model = %q, want %q", got.Model, DefaultOpenAIModel)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", got.ResponseFormat)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestOpenAIClient_Errors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   string
	}{
		"api error":     {http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, "bad key"},
		"empty choices": {http.StatusOK, `{"choices":[]}`, ErrEmptyResponse.Error()},
		"not json":      {http.StatusBadGateway, `<html>`, "HTTP 502"},
	}
	for name, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}))
		_, err := NewOpenAIClient("k", "m", srv.URL).Complete(context.Background(), Request{UserPrompt: "x"})
		srv.Close()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want containing %q", name, err, tc.want)
		}
	}
}

func TestParseNarrative(t *testing.T) {
	n, err := ParseNarrative("```json\n{\"summary\":\"Sleep first.\",\"priorities\":[\"sleep\",\"stress\"],\"encouragement\":\"You can do this.\"}\n```")
	if err != nil {
		t.Fatal(err)
	}
	text := n.Text()
	if !strings.HasPrefix(text, "Sleep first.") || !strings.Contains(text, "sleep; stress") {
		t.Errorf("Text = %q", text)
	}
	if strings.Count(text, "\n\n") != 2 {
		t.Errorf("Text paragraphs = %q", text)
	}

	if _, err := ParseNarrative(`{"summary":""}`); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestAuthenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	chatURL := srv.URL + "/v1/chat/completions"
	if err := Authenticate(context.Background(), "good", chatURL); err != nil {
		t.Errorf("good key: %v", err)
	}
	if err := Authenticate(context.Background(), "bad", chatURL); err == nil {
		t.Error("bad key should fail")
	}
	if err := Authenticate(context.Background(), "", chatURL); err == nil {
		t.Error("empty key should fail")
	}
}
