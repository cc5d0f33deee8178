package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL = "http://127.0.0.1:11434"
	defaultModel   = "tinyllama"

	summarizeInputCap = 2000
	classifyInputCap  = 500
	expandMax         = 3
)

// Ollama calls a local Ollama server's /api/generate endpoint.
type Ollama struct {
	baseURL string
	model   string
	http    *http.Client
}

var _ Generator = (*Ollama)(nil)

func NewFromEnv() *Ollama {
	base := os.Getenv("HYPERSERP_OLLAMA_URL")
	if base == "" {
		base = defaultBaseURL
	}
	model := os.Getenv("HYPERSERP_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Ollama{
		baseURL: strings.TrimRight(base, "/"),
		model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (o *Ollama) generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	reqBody := map[string]any{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
	}
	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := o.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("ollama http %d", resp.StatusCode)
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Response), nil
}

func (o *Ollama) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if len(text) > summarizeInputCap {
		text = text[:summarizeInputCap]
	}
	prompt := "You are a concise summarizer.\n" +
		"Summarize the content below in 3-5 bullets.\n\n" +
		"CONTENT:\n" + text + "\n\nBULLETS:\n- "
	return o.generate(ctx, prompt, 180, 0.3)
}

func (o *Ollama) ClassifyTopic(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "misc", nil
	}
	if len(text) > classifyInputCap {
		text = text[:classifyInputCap]
	}
	prompt := "Classify the snippet into one topic:\n" +
		"Choices: " + strings.Join(Topics, ", ") + ".\n\n" +
		"SNIPPET:\n" + text + "\n\nOnly output the single topic:"
	out, err := o.generate(ctx, prompt, 8, 0)
	if err != nil {
		return "misc", err
	}
	out = strings.ToLower(out)
	for _, c := range Topics {
		if strings.Contains(out, c) {
			return c, nil
		}
	}
	return "misc", nil
}

func (o *Ollama) ExpandQuery(ctx context.Context, q string) ([]string, error) {
	prompt := fmt.Sprintf("Give %d short alternative queries for: %q. One per line.", expandMax, q)
	out, err := o.generate(ctx, prompt, 60, 0.7)
	if err != nil {
		return nil, err
	}
	var alts []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "- "))
		if line == "" {
			continue
		}
		alts = append(alts, line)
		if len(alts) == expandMax {
			break
		}
	}
	return alts, nil
}
