package signal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestInterestFetchScoresSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("country"); got != "EG" {
			t.Errorf("country param = %q, want EG", got)
		}
		fmt.Fprint(w, `{"series":[10,20,30,100]}`)
	}))
	defer srv.Close()

	i := NewInterest(srv.URL, 5*time.Second)
	res := i.Fetch(context.Background(), "قضية", "EG")

	if res.Degraded {
		t.Fatal("result degraded on a healthy proxy")
	}
	// avg 40 * 0.6 + peak 100 * 0.4 = 64
	if res.Score != 64 {
		t.Errorf("Score = %d, want 64", res.Score)
	}
}

func TestInterestFetchFallsBackWithoutProxy(t *testing.T) {
	i := NewInterest("", time.Second)
	res := i.Fetch(context.Background(), "anything", "EG")

	if !res.Degraded {
		t.Error("expected degraded result without a proxy URL")
	}
	if res.Score != FallbackScore {
		t.Errorf("fallback Score = %d, want %d", res.Score, FallbackScore)
	}
}

func TestInterestFetchDegradesOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "proxy down", http.StatusBadGateway)
	}))
	defer srv.Close()

	i := NewInterest(srv.URL, 5*time.Second)
	res := i.Fetch(context.Background(), "anything", "EG")

	if !res.Degraded || res.Score != FallbackScore {
		t.Errorf("got score=%d degraded=%v, want fallback", res.Score, res.Degraded)
	}
}

func TestSeriesScore(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   int
	}{
		{"empty", nil, 0},
		{"flat", []float64{50, 50, 50}, 50},
		{"spike", []float64{0, 0, 0, 100}, 55}, // avg 25*0.6 + 100*0.4
		{"clamped", []float64{200, 200}, 100},
	}
	for _, tt := range tests {
		if got := SeriesScore(tt.series); got != tt.want {
			t.Errorf("%s: SeriesScore = %d, want %d", tt.name, got, tt.want)
		}
	}
}
