package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) < 2 {
			http.Error(w, "expected system and user messages", http.StatusBadRequest)
			return
		}
		content, err := json.Marshal(enhancement(req.Messages[len(req.Messages)-1].Content))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-stub",
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": string(content)},
			}},
		})
	})
	return mux
}

// enhancement builds a deterministic answer from the enhancement prompt:
// the first paragraph becomes the summary and the prompt parameters are
// echoed in the expanded context.
func enhancement(user string) map[string]string {
	article := user
	if i := strings.Index(user, "Article text:\n"); i >= 0 {
		article = user[i+len("Article text:\n"):]
	}
	summary := strings.TrimSpace(article)
	if i := strings.Index(summary, "\n\n"); i > 0 {
		summary = summary[:i]
	}
	if summary == "" {
		summary = "The page had no readable text."
	}
	out := map[string]string{
		"summary":  summary,
		"expanded": "Stub context for a request with " + field(user, "Mode") + " mode at " + field(user, "Detail level") + " detail.",
	}
	if field(user, "Validate") == "yes" {
		out["validation"] = "Claim: " + summary + "\nVerdict: Uncertain (stub model cannot verify)."
	}
	return out
}

func field(user, name string) string {
	for _, line := range strings.Split(user, "\n") {
		if v, ok := strings.CutPrefix(line, name+": "); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
