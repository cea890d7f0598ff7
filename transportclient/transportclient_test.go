package transportclient

import (
	"testing"
	"time"

	"github.com/samsirohi11/coreconf/coreconf"
)

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig("ws://localhost:5683").Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v, want nil", err)
	}
	if err := (Config{}).Validate(); err != ErrEmptyURL {
		t.Errorf("empty Config.Validate() error = %v, want ErrEmptyURL", err)
	}
}

func TestConfigValidateBadDelays(t *testing.T) {
	cfg := DefaultConfig("ws://x")
	cfg.BaseDelay = 0
	if err := cfg.Validate(); err != ErrInvalidDelay {
		t.Errorf("Validate() error = %v, want ErrInvalidDelay", err)
	}

	cfg = DefaultConfig("ws://x")
	cfg.MaxDelay = cfg.BaseDelay - 1
	if err := cfg.Validate(); err != ErrInvalidMaxDelay {
		t.Errorf("Validate() error = %v, want ErrInvalidMaxDelay", err)
	}

	cfg = DefaultConfig("ws://x")
	cfg.JitterFactor = 1.5
	if err := cfg.Validate(); err != ErrInvalidJitter {
		t.Errorf("Validate() error = %v, want ErrInvalidJitter", err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	cf := coreconf.ContentFormatYangDataCBOR
	req := coreconf.NewRequest(coreconf.MethodFetch).WithPayload([]byte{0x01, 0x02}, cf)

	encoded, err := EncodeFrame(req)
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	decoded, err := DecodeFrame(encoded)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if decoded.Method != req.Method || decoded.ContentFormat == nil || *decoded.ContentFormat != cf {
		t.Errorf("DecodeFrame() = %+v, want matching %+v", decoded, req)
	}
}

func TestResponseFrameRoundTrip(t *testing.T) {
	resp := coreconf.ContentResponse([]byte{0xAA}, coreconf.ContentFormatYangDataCBOR)

	encoded, err := EncodeResponseFrame(resp)
	if err != nil {
		t.Fatalf("EncodeResponseFrame() error = %v", err)
	}
	decoded, err := DecodeResponseFrame(encoded)
	if err != nil {
		t.Fatalf("DecodeResponseFrame() error = %v", err)
	}
	if decoded.Code != resp.Code || string(decoded.Payload) != string(resp.Payload) {
		t.Errorf("DecodeResponseFrame() = %+v, want matching %+v", decoded, resp)
	}
}

func TestSendRequestWithoutConnectionErrors(t *testing.T) {
	client, err := NewClient(DefaultConfig("ws://localhost:5683"), nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.SendRequest(coreconf.NewRequest(coreconf.MethodGet)); err != ErrNotConnected {
		t.Errorf("SendRequest() error = %v, want ErrNotConnected", err)
	}
}

func TestComputeBackoffCapsAtMaxDelay(t *testing.T) {
	cfg := DefaultConfig("ws://x")
	cfg.JitterFactor = 0
	client, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	backoff := client.computeBackoff(64)
	if backoff > cfg.MaxDelay {
		t.Errorf("computeBackoff(64) = %v, want <= %v", backoff, cfg.MaxDelay)
	}
}

func TestComputeBackoffGrowsWithAttempt(t *testing.T) {
	cfg := DefaultConfig("ws://x")
	cfg.JitterFactor = 0
	cfg.MaxDelay = time.Hour
	client, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.computeBackoff(2) <= client.computeBackoff(1) {
		t.Errorf("computeBackoff should grow with attempt count")
	}
}
