// Command extract runs one message through the extraction pipeline and prints
// the resulting candidate as JSON. Useful for tuning the prompt and checking
// fallback behavior without a running server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/expense-flow/internal/extract"
	"github.com/dvloznov/expense-flow/internal/logger"
)

func main() {
	var (
		fallbackOnly = flag.Bool("fallback-only", false, "skip the model and use the deterministic parser")
		model        = flag.String("model", "", "Gemini model name (default "+extract.DefaultModelName+")")
		timeout      = flag.Duration("timeout", 30*time.Second, "extraction timeout")
	)
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "usage: extract [-fallback-only] [-model name] <message text>")
		os.Exit(2)
	}

	log := logger.New("warn")

	var primary extract.Engine
	if !*fallbackOnly {
		primary = extract.NewGeminiEngine(*model)
	}
	extractor := extract.NewExtractor(primary, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	candidate := extractor.Extract(ctx, text)

	out, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode candidate")
	}
	fmt.Println(string(out))
}
