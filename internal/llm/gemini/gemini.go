// Package gemini implements llm.Provider for the Google Generative Language
// API, the oracle the original designer tool was built against.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client implements llm.Provider for Gemini models.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// New creates a Gemini provider.
func New(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = "gemini-1.5-pro"
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Complete(ctx context.Context, prompt *llm.Prompt, opts *llm.RequestOptions) (*llm.Response, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}

	body := map[string]any{}

	var contents []content
	for _, m := range prompt.Messages {
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	body["contents"] = contents
	if prompt.SystemPrompt != "" {
		body["systemInstruction"] = content{Parts: []part{{Text: prompt.SystemPrompt}}}
	}

	genCfg := map[string]any{}
	if opts != nil {
		if opts.Temperature != nil {
			genCfg["temperature"] = *opts.Temperature
		}
		if opts.TopP != nil {
			genCfg["topP"] = *opts.TopP
		}
		if opts.MaxTokens != nil {
			genCfg["maxOutputTokens"] = *opts.MaxTokens
		}
		if len(opts.StopSeqs) > 0 {
			genCfg["stopSequences"] = opts.StopSeqs
		}
	}
	if len(genCfg) > 0 {
		body["generationConfig"] = genCfg
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini: %s: %s", resp.Status, respBody)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
		} `json:"usageMetadata"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}

	text := ""
	stop := ""
	if len(result.Candidates) > 0 {
		stop = result.Candidates[0].FinishReason
		for _, p := range result.Candidates[0].Content.Parts {
			text += p.Text
		}
	}

	return &llm.Response{
		Content:      text,
		Model:        c.model,
		InputTokens:  result.UsageMetadata.PromptTokenCount,
		OutputTokens: result.UsageMetadata.CandidatesTokenCount,
		StopReason:   stop,
	}, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	type part struct {
		Text string `json:"text"`
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		body, err := json.Marshal(map[string]any{
			"content": map[string]any{"parts": []part{{Text: text}}},
		})
		if err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s/models/text-embedding-004:embedContent", c.baseURL)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("gemini embed: %s: %s", resp.Status, respBody)
		}

		var result struct {
			Embedding struct {
				Values []float32 `json:"values"`
			} `json:"embedding"`
		}
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, err
		}
		out = append(out, result.Embedding.Values)
	}
	return out, nil
}
