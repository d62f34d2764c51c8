package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/apl83/invoice-nlp/internal/common"
)

// ClientConfig configures the HTTP client for the external NER model service.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client implements EntityRecognizer against an HTTP model server.
type Client struct {
	cfg ClientConfig
	hc  *http.Client
	log *slog.Logger
}

func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		return nil, common.NewAppError("MODEL_CONFIG", "model base URL not configured", common.ErrModelUnavailable)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: logger,
	}, nil
}

// Recognize sends the text to the model server and decodes its entity spans.
func (c *Client) Recognize(ctx context.Context, text string) ([]Span, error) {
	start := time.Now()
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/ner"

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encode ner request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	c.log.Debug("nlp.model.request", "url", endpoint, "text_len", len(text))

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Error("nlp.model.send_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewAppError("MODEL_REQUEST", "model request failed", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("nlp.model.body_close", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ner response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error("nlp.model.status_error", "status", resp.StatusCode, "body_bytes", len(raw))
		return nil, common.NewAppError("MODEL_STATUS",
			fmt.Sprintf("model returned status %d", resp.StatusCode), common.ErrModelUnavailable)
	}

	var decoded struct {
		Entities []Span `json:"entities"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode ner response: %w", err)
	}

	c.log.Info("nlp.model.ok",
		"spans", len(decoded.Entities),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return decoded.Entities, nil
}
