package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGoogleTTSURL = "https://texttospeech.googleapis.com/v1/text:synthesize"

// GoogleSynthesizer calls the Google Cloud TTS REST endpoint.
type GoogleSynthesizer struct {
	apiKey   string
	url      string
	langCode string
	client   *http.Client
}

func NewGoogleSynthesizer(apiKey, langCode string) *GoogleSynthesizer {
	if langCode == "" {
		langCode = "ja-JP"
	}
	return &GoogleSynthesizer{
		apiKey:   apiKey,
		url:      defaultGoogleTTSURL,
		langCode: langCode,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// WithURL overrides the endpoint, used by tests.
func (s *GoogleSynthesizer) WithURL(url string) *GoogleSynthesizer {
	s.url = url
	return s
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	reqBody := map[string]interface{}{
		"input": map[string]string{
			"text": text,
		},
		"voice": map[string]interface{}{
			"languageCode": s.langCode,
			"ssmlGender":   "MALE",
		},
		"audioConfig": map[string]string{
			"audioEncoding": "MP3",
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"?key="+s.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("tts api error %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, "", fmt.Errorf("parse response: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return nil, "", fmt.Errorf("decode audio: %w", err)
	}
	return audio, "audio/mpeg", nil
}
