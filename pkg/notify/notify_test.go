package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AhmedHasab/eyelhekaya/pkg/trend"
)

func testDigest() *Digest {
	return &Digest{
		Action: trend.ActionDiscoverLong,
		Day:    "2025-11-20",
		Candidates: []trend.Candidate{
			{Title: "قضية غامضة", Market: "EG", FinalScore: 82},
		},
	}
}

func TestWebhookSignsPayload(t *testing.T) {
	const secret = "s3cret"
	var gotSig string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature-256")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, secret)
	if err := wh.Send(context.Background(), testDigest()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}

	var d Digest
	if err := json.Unmarshal(gotBody, &d); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if d.Action != trend.ActionDiscoverLong || len(d.Candidates) != 1 {
		t.Errorf("payload round-trip mismatch: %+v", d)
	}
}

func TestWebhookRejectsFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, "")
	if err := wh.Send(context.Background(), testDigest()); err == nil {
		t.Error("expected error on HTTP 403")
	}
}

func TestSlackSendsBlocks(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode slack payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL)
	if err := s.Send(context.Background(), testDigest()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, ok := payload["blocks"]; !ok {
		t.Errorf("slack payload missing blocks: %v", payload)
	}
}

type failingNotifier struct{ name string }

func (f failingNotifier) Name() string                            { return f.name }
func (f failingNotifier) Send(ctx context.Context, d *Digest) error { return errors.New("boom") }

type okNotifier struct{ sent int }

func (o *okNotifier) Name() string                            { return "ok" }
func (o *okNotifier) Send(ctx context.Context, d *Digest) error { o.sent++; return nil }

func TestManagerBroadcastsToAll(t *testing.T) {
	ok := &okNotifier{}
	m := NewManager([]Notifier{failingNotifier{name: "bad"}, ok})

	err := m.Broadcast(context.Background(), testDigest())
	if err == nil {
		t.Fatal("expected joined error from failing notifier")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error %q does not name the failing notifier", err)
	}
	if ok.sent != 1 {
		t.Errorf("healthy notifier sent %d times, want 1 (failure must not short-circuit)", ok.sent)
	}
}

func TestManagerHasNotifiers(t *testing.T) {
	if NewManager(nil).HasNotifiers() {
		t.Error("empty manager reports notifiers")
	}
	if !NewManager([]Notifier{&okNotifier{}}).HasNotifiers() {
		t.Error("non-empty manager reports none")
	}
}
