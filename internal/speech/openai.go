package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultOpenAITTSURL = "https://api.openai.com/v1/audio/speech"

// OpenAISynthesizer calls the OpenAI speech endpoint. The defaults mirror
// the quiz master's voice: tts-1 with the "ash" voice at normal speed.
type OpenAISynthesizer struct {
	apiKey string
	url    string
	model  string
	voice  string
	speed  float64
	client *http.Client
}

func NewOpenAISynthesizer(apiKey, model, voice string) *OpenAISynthesizer {
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "ash"
	}
	return &OpenAISynthesizer{
		apiKey: apiKey,
		url:    defaultOpenAITTSURL,
		model:  model,
		voice:  voice,
		speed:  1.0,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithURL overrides the endpoint, used by tests.
func (s *OpenAISynthesizer) WithURL(url string) *OpenAISynthesizer {
	s.url = url
	return s
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"model": s.model,
		"voice": s.voice,
		"input": text,
		"speed": s.speed,
	})
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read tts response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("tts api error %d: %s", resp.StatusCode, string(audio))
	}
	return audio, "audio/mpeg", nil
}
