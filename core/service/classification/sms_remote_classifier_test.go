package classification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sethvargo/go-retry"

	"sms_classifier/core/domain"
)

// recordingBackoff keeps the delays the policy asks for and waits none of them.
type recordingBackoff struct {
	delays []time.Duration
}

func (b *recordingBackoff) wrap(next retry.Backoff) retry.Backoff {
	return retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := next.Next()
		if stop {
			return 0, true
		}
		b.delays = append(b.delays, d)
		return time.Nanosecond, false
	})
}

func newTestRemote(url string, backoff *recordingBackoff) *RemoteClassifier {
	return NewRemoteClassifier(DefaultRemoteConfig(url), WithBackoffWrapper(backoff.wrap))
}

func remoteFeatures() *domain.MessageFeatures {
	return NewFeatureExtractor(testVocabulary()).Extract("Your OTP is 482910", strPtr("AX-HDFCBK"))
}

func TestRemoteClassifier_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	reqs := make(chan classifyRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/classify" {
			t.Errorf("request = %s %s, want POST /classify", r.Method, r.URL.Path)
		}
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req classifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		reqs <- req
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isOtp":true,"otpIntent":"BANK_OR_CARD_TXN_OTP","isPhishing":false,"phishScore":0.12,"reasons":["server says otp"]}`))
	}))
	defer srv.Close()

	backoff := &recordingBackoff{}
	pred := newTestRemote(srv.URL, backoff).Predict(context.Background(), remoteFeatures())

	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(backoff.delays) != len(want) || backoff.delays[0] != want[0] || backoff.delays[1] != want[1] {
		t.Errorf("backoff delays = %v, want %v", backoff.delays, want)
	}
	if pred.IsOTP != domain.TristateTrue || pred.IsPhishing != domain.TristateFalse {
		t.Errorf("prediction = %+v", pred)
	}
	if pred.OTPIntent == nil || *pred.OTPIntent != domain.IntentBankOrCardTxn {
		t.Errorf("OTPIntent = %v", pred.OTPIntent)
	}
	if len(pred.Reasons) != 1 || pred.Reasons[0] != "server says otp" {
		t.Errorf("Reasons = %v", pred.Reasons)
	}

	got := <-reqs
	if got.Text != "Your OTP is 482910" || got.Sender == nil || *got.Sender != "AX-HDFCBK" {
		t.Errorf("request text/sender = %q/%v", got.Text, got.Sender)
	}
	if len(got.Features) != domain.HeuristicFeatureCount {
		t.Errorf("len(features) = %d, want %d", len(got.Features), domain.HeuristicFeatureCount)
	}
	if got.Features["feature_1"] != 1 {
		t.Errorf("feature_1 (otp keyword) = %v, want 1", got.Features["feature_1"])
	}
}

func TestRemoteClassifier_AllAttemptsFail(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	backoff := &recordingBackoff{}
	pred := newTestRemote(srv.URL, backoff).Predict(context.Background(), remoteFeatures())

	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
	if len(backoff.delays) != 2 {
		t.Errorf("retries = %d, want 2", len(backoff.delays))
	}
	if pred.IsOTP.IsKnown() || pred.IsPhishing.IsKnown() || pred.OTPIntent != nil {
		t.Errorf("prediction = %+v, want all unknown", pred)
	}
	if len(pred.Reasons) != 1 || !strings.HasPrefix(pred.Reasons[0], "Server error: ") {
		t.Fatalf("Reasons = %v, want a Server error reason", pred.Reasons)
	}
	if !strings.Contains(pred.Reasons[0], "502") {
		t.Errorf("reason %q does not name the status", pred.Reasons[0])
	}
}

func TestRemoteClassifier_NullVerdicts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"phishScore":0.4}`))
	}))
	defer srv.Close()

	pred := newTestRemote(srv.URL, &recordingBackoff{}).Predict(context.Background(), remoteFeatures())
	if pred.IsOTP.IsKnown() || pred.IsPhishing.IsKnown() {
		t.Errorf("prediction = %+v, want unknown verdicts", pred)
	}
	if pred.PhishScore != 0.4 {
		t.Errorf("PhishScore = %v, want 0.4", pred.PhishScore)
	}
	if pred.Reasons == nil {
		t.Error("Reasons = nil, want empty slice")
	}
}

func TestRemoteClassifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestRemote(url, &recordingBackoff{})
	pred := c.Predict(context.Background(), remoteFeatures())
	if pred.IsOTP.IsKnown() {
		t.Errorf("IsOTP = %v, want unknown", pred.IsOTP)
	}
	if !c.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false after three failures, breaker should still be closed")
	}
}
