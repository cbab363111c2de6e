package transcribe

import (
	"context"
	"testing"
	"time"
)

func TestMock_ReturnsKnownSample(t *testing.T) {
	m := &Mock{Latency: 0}

	got, err := m.Transcribe(context.Background(), "https://example.com/audio.ogg")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if got == "" {
		t.Fatal("Transcribe returned empty text")
	}

	found := false
	for _, s := range mockSamples {
		if got == s {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Transcribe returned %q, not one of the known samples", got)
	}
}

func TestMock_RespectsContextCancellation(t *testing.T) {
	m := &Mock{Latency: time.Minute}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Transcribe(ctx, "audio.ogg")
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
}
