// Package main implements an offline planner model for semfibo.
// It serves OpenAI-compatible /v1/chat/completions responses chosen by regex
// rules matched against the last user message, so the question battery and
// the HTTP API can run without a real model.
//
// Usage:
//
//	mock-llm -rules /path/to/rules.yaml -port 1234
//
// Without -rules the embedded rules are used. A rule's reply may reference
// capture groups as $1 or ${name}; the first matching rule wins and the
// fallback reply answers everything else.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// --- OpenAI-compatible types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Rules ---

// Rule maps a pattern over the user message to a reply template.
type Rule struct {
	Name  string `yaml:"name"`
	Match string `yaml:"match"`
	Reply string `yaml:"reply"`

	re *regexp.Regexp
}

// RuleSet is an ordered rule list plus the reply used when nothing matches.
type RuleSet struct {
	Rules    []Rule `yaml:"rules"`
	Fallback string `yaml:"fallback"`
}

// parseRules decodes and compiles a rule file.
func parseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(rs.Rules) == 0 && rs.Fallback == "" {
		return nil, errors.New("rules file defines no rules and no fallback")
	}
	for i := range rs.Rules {
		r := &rs.Rules[i]
		if r.Name == "" {
			r.Name = "rule-" + strconv.Itoa(i+1)
		}
		re, err := regexp.Compile(r.Match)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		r.re = re
	}
	return &rs, nil
}

// Reply returns the reply for message and the name of the rule that produced
// it, or "fallback".
func (rs *RuleSet) Reply(message string) (string, string) {
	for _, r := range rs.Rules {
		m := r.re.FindStringSubmatchIndex(message)
		if m == nil {
			continue
		}
		return string(r.re.ExpandString(nil, r.Reply, message, m)), r.Name
	}
	return rs.Fallback, "fallback"
}

// --- Server ---

// capturedRequest stores the key fields of an incoming request for test verification.
type capturedRequest struct {
	Model     string        `json:"model"`
	Rule      string        `json:"rule"`
	Messages  []chatMessage `json:"messages"`
	Timestamp int64         `json:"timestamp"`
}

type server struct {
	rules  *RuleSet
	logger *slog.Logger
	calls  atomic.Int64

	mu       sync.Mutex
	byRule   map[string]int64
	requests []capturedRequest
}

func newServer(rules *RuleSet, logger *slog.Logger) *server {
	return &server{
		rules:  rules,
		logger: logger,
		byRule: make(map[string]int64),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Post("/v1/chat/completions", s.handleChatCompletions)
	r.Get("/v1/models", s.handleModels)
	r.Get("/stats", s.handleStats)
	r.Get("/requests", s.handleRequests)
	return r
}

func main() {
	rulesPath := flag.String("rules", "", "YAML rules file (default built-in rules)")
	port := flag.Int("port", 1234, "port to listen on")
	flag.Parse()

	if env := os.Getenv("MOCK_LLM_RULES"); env != "" && *rulesPath == "" {
		*rulesPath = env
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(*rulesPath, *port, logger); err != nil {
		logger.Error("Mock LLM failed", "error", err)
		os.Exit(1)
	}
}

func run(rulesPath string, port int, logger *slog.Logger) error {
	data := defaultRules
	if rulesPath != "" {
		var err error
		if data, err = os.ReadFile(rulesPath); err != nil {
			return fmt.Errorf("read rules: %w", err)
		}
	}
	rules, err := parseRules(data)
	if err != nil {
		return err
	}
	logger.Info("Loaded rules", "count", len(rules.Rules), "path", rulesPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newServer(rules, logger).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Mock LLM listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			last = req.Messages[i].Content
			break
		}
	}
	if last == "" {
		http.Error(w, "no user message", http.StatusBadRequest)
		return
	}

	content, rule := s.rules.Reply(last)
	callNum := s.calls.Add(1)
	s.capture(req, rule)
	s.logger.Debug("Completion", "call", callNum, "model", req.Model, "rule", rule)

	resp := chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{{
			Message:      chatMessage{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
		Usage: chatUsage{
			PromptTokens:     len(last) / 4, // rough estimate
			CompletionTokens: len(content) / 4,
			TotalTokens:      (len(last) + len(content)) / 4,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *server) capture(req chatRequest, rule string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRule[rule]++
	s.requests = append(s.requests, capturedRequest{
		Model:     req.Model,
		Rule:      rule,
		Messages:  req.Messages,
		Timestamp: time.Now().UnixMilli(),
	})
}

// handleModels lists a single model so model pickers have something to show.
func (s *server) handleModels(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data": []map[string]string{
			{"id": "mock-planner", "object": "model", "owned_by": "mock-llm"},
		},
	})
}

// handleStats returns total_calls and per-rule calls_by_rule counts.
func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	byRule := make(map[string]int64, len(s.byRule))
	for k, v := range s.byRule {
		byRule[k] = v
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_calls":   s.calls.Load(),
		"calls_by_rule": byRule,
	})
}

// handleRequests returns captured requests, optionally filtered by ?rule=.
func (s *server) handleRequests(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("rule")

	s.mu.Lock()
	out := make([]capturedRequest, 0, len(s.requests))
	for _, req := range s.requests {
		if filter == "" || req.Rule == filter {
			out = append(out, req)
		}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"requests": out})
}
