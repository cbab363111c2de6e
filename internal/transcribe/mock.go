package transcribe

import (
	"context"
	"math/rand/v2"
	"time"
)

// mockSamples are realistic utterances returned while no speech-to-text
// backend is wired up.
var mockSamples = []string{
	"Acabei de gastar cinquenta e dois reais no mercado",
	"Paguei 15 com estacionamento agora",
	"R$ 120,50 na conta de luz",
	"Comprei 3 cervejas por 25 reais",
	"Despesa de 80 reais com gasolina aditivada",
}

// Mock simulates a speech-to-text backend: it waits for a configurable latency
// and returns one of a fixed set of Portuguese utterances.
type Mock struct {
	// Latency approximates the network and processing delay of a real backend.
	Latency time.Duration
}

// NewMock creates a mock transcriber with a realistic default latency.
func NewMock() *Mock {
	return &Mock{Latency: 1200 * time.Millisecond}
}

// Transcribe implements Transcriber.
func (m *Mock) Transcribe(ctx context.Context, audioRef string) (string, error) {
	if m.Latency > 0 {
		timer := time.NewTimer(m.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return mockSamples[rand.IntN(len(mockSamples))], nil
}
