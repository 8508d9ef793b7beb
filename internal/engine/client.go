/*
PURPOSE:
  Core engine for interacting with Ollama APIs.
  Handles model discovery and the single blocking chat call per run.

REQUIREMENTS:
  User-specified:
  - Detect models and their parameter sizes.
  - Send the entity-extraction prompt at a given temperature.
  - Ask for JSON output when the model supports it, without relying on it.

  Implementation-discovered:
  - Needs http.Client with timeouts.
  - Model loading happens before the first header byte; bound it separately.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner), internal/cli
  - Uses: internal/config, internal/model, internal/output

ERROR HANDLING:
  - Every failure of the chat call is a *TransportError.
  - No retries: one request, one response.

IMPLEMENTATION RULES:
  - Use net/http.
  - Enforce timeouts in the transport, not in callers.
  - The client never measures time and never writes files.

USAGE:
  e := engine.New(cfg.Ollama)
  models, err := e.ListModels(ctx)
  raw, err := e.Chat(ctx, "llama3:8b", 0.0, prompt)

SELF-HEALING INSTRUCTIONS:
  - If Ollama API changes, update endpoints (/api/tags, /api/chat).

RELATED FILES:
  - internal/config/config.go
  - internal/model/types.go
*/

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/daryltucker/forest-extract/internal/config"
	"github.com/daryltucker/forest-extract/internal/model"
	"github.com/daryltucker/forest-extract/internal/output"
)

// DefaultInstruction is prefixed to every input string.
const DefaultInstruction = "return as json all the entities in the following string: "

// inputPlaceholder marks where a message template wants the input.
const inputPlaceholder = "{input}"

// ChatClient sends one prompt to one model and returns the raw answer.
type ChatClient interface {
	Chat(ctx context.Context, modelName string, temperature float64, prompt string) (model.RawResponse, error)
}

// TransportError reports a chat call that could not be completed.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("chat with %s failed: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BuildPrompt combines a message template with one input string. An empty
// template means DefaultInstruction. A template containing {input} has it
// replaced; otherwise the template is a prefix.
func BuildPrompt(template, input string) string {
	if template == "" {
		template = DefaultInstruction
	}
	if strings.Contains(template, inputPlaceholder) {
		return strings.ReplaceAll(template, inputPlaceholder, input)
	}
	return template + input
}

// Engine handles Ollama interactions.
type Engine struct {
	Config config.OllamaConfig
	Client *http.Client
}

// New creates a new Engine.
func New(cfg config.OllamaConfig) *Engine {
	// We use a custom transport to differentiate between connection timeout
	// and the server hanging during headers (e.g., model loading).
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.LoadTimeout

	return &Engine{
		Config: cfg,
		Client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

func (e *Engine) url(path string) string {
	return strings.TrimRight(e.Config.URL, "/") + path
}

type tagsResponse struct {
	Models []struct {
		Name    string `json:"name"`
		Details struct {
			ParameterSize string `json:"parameter_size"`
		} `json:"details"`
	} `json:"models"`
}

// ListModels returns the models installed on the Ollama host. Models that
// do not declare a parameter size get "unknown".
func (e *Engine) ListModels(ctx context.Context) ([]model.ModelSpec, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url("/api/tags"), nil)
	if err != nil {
		return nil, eris.Wrap(err, "engine: build tags request")
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: list models at %s", e.Config.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("engine: list models at %s: bad status: %s", e.Config.URL, resp.Status)
	}

	var payload tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, eris.Wrap(err, "engine: decode tags")
	}

	models := make([]model.ModelSpec, 0, len(payload.Models))
	for _, m := range payload.Models {
		size := m.Details.ParameterSize
		if size == "" {
			size = "unknown"
		}
		models = append(models, model.ModelSpec{Name: m.Name, ParameterSize: size})
	}
	return models, nil
}

// Models implements ModelSource by asking the host.
func (e *Engine) Models(ctx context.Context) ([]model.ModelSpec, error) {
	return e.ListModels(ctx)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string         `json:"model"`
	Messages  []chatMessage  `json:"messages"`
	Stream    bool           `json:"stream"`
	Format    string         `json:"format,omitempty"`
	Options   map[string]any `json:"options"`
	KeepAlive string         `json:"keep_alive,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"` // API-side error
}

// Chat runs one non-streaming chat request.
func (e *Engine) Chat(ctx context.Context, modelName string, temperature float64, prompt string) (model.RawResponse, error) {
	fail := func(err error) (model.RawResponse, error) {
		return model.RawResponse{}, &TransportError{Model: modelName, Err: err}
	}

	payload := chatRequest{
		Model:     modelName,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		Stream:    false,
		Options:   map[string]any{"temperature": temperature},
		KeepAlive: e.Config.KeepAlive,
	}
	if e.Config.FormatJSON {
		payload.Format = "json"
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fail(eris.Wrap(err, "engine: encode chat request"))
	}

	trace := &httptrace.ClientTrace{
		GotConn: func(connInfo httptrace.GotConnInfo) {
			output.Logger.Debugw("Network: Connected", "remote", connInfo.Conn.RemoteAddr(), "reused", connInfo.Reused)
		},
		GotFirstResponseByte: func() {
			output.Logger.Debugw("Network: First Byte Received", "model", modelName)
		},
	}
	ctx = httptrace.WithClientTrace(ctx, trace)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url("/api/chat"), bytes.NewReader(reqBody))
	if err != nil {
		return fail(eris.Wrap(err, "engine: build chat request"))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "awaiting headers") {
			return fail(eris.Wrap(err, "Ollama Header Timeout (model loading?)"))
		}
		return fail(eris.Wrap(err, "Network/Connection Error"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(eris.Wrap(err, "failed to read response body"))
	}

	if resp.StatusCode != http.StatusOK {
		return fail(eris.Errorf("Ollama Server Error (%s): %s", resp.Status, strings.TrimSpace(string(body))))
	}

	var data chatResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return fail(eris.Wrapf(err, "Ollama returned invalid JSON (Body: %s)", string(body)))
	}
	if data.Error != "" {
		return fail(eris.Errorf("Ollama API Error: %s", data.Error))
	}

	return model.RawResponse{Content: data.Message.Content}, nil
}
