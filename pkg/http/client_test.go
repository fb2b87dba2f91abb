package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSendAndParseJSON(t *testing.T) {
	var gotBody map[string]int
	var gotCT, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotQuery = r.URL.Query().Get("range")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"predictions":[[0.5]]}`))
	}))
	defer srv.Close()

	var out struct {
		Predictions [][]float64 `json:"predictions"`
	}
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodPost,
		URL:         srv.URL,
		QueryParams: map[string][]string{"range": {"2y"}},
		Body:        map[string]int{"lookback": 60},
	}, &out)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotCT != "application/json" || gotQuery != "2y" || gotBody["lookback"] != 60 {
		t.Fatalf("server saw ct=%q range=%q body=%v", gotCT, gotQuery, gotBody)
	}
	if len(out.Predictions) != 1 || out.Predictions[0][0] != 0.5 {
		t.Fatalf("unexpected decode %+v", out)
	}
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 {
			t.Errorf("GET without body sent %d bytes", r.ContentLength)
		}
		http.Error(w, "Not Found", http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}
