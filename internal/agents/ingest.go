package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/genai"

	"github.com/zerify/zerify/internal/llmutil"
	"github.com/zerify/zerify/internal/zerify"
)

// maxFetchBody caps raw HTML read from a page.
const maxFetchBody = 1 << 20 // 1 MB

const ingestionSystemPrompt = `You are a Content Ingestion Agent. Use your search tool to retrieve the main textual content from the given web page. Respond with a single JSON object inside a markdown code block:
{
  "success": boolean,
  "text": "the full extracted article text, or an empty string when inaccessible",
  "reason": "when success is false, a brief user-friendly reason (e.g. 'Page is protected by a login', 'Content is blocked for crawlers')"
}`

// Ingest retrieves the readable text of the page at rawURL. It fetches and
// extracts the page directly first; when the fetch is blocked or yields no
// text it falls back to search-grounded retrieval through the model.
func (g *Gemini) Ingest(ctx context.Context, rawURL string) (*zerify.IngestionResult, error) {
	const stage = zerify.StageContentIngestion

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return nil, zerify.NewAgentError(stage, zerify.KindInvalidInput,
			fmt.Errorf("URL appears to be invalid: %q", rawURL))
	}

	if text, err := fetchPageText(ctx, rawURL); err == nil && text != "" {
		return &zerify.IngestionResult{Text: text, Images: []string{}, Domain: parsed.Hostname()}, nil
	}

	text, err := g.ingestViaSearch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &zerify.IngestionResult{Text: text, Images: []string{}, Domain: parsed.Hostname()}, nil
}

// ingestViaSearch asks the search-grounded model to retrieve the page text.
func (g *Gemini) ingestViaSearch(ctx context.Context, rawURL string) (string, error) {
	const stage = zerify.StageContentIngestion

	resp, err := g.generate(ctx, stage,
		genai.Text(fmt.Sprintf("Retrieve the main textual content of the web page at this URL: %s", rawURL)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(ingestionSystemPrompt, genai.RoleUser),
			Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		})
	if err != nil {
		return "", err
	}

	raw := responseText(resp)
	if raw == "" {
		return "", zerify.NewAgentError(stage, zerify.KindBlocked,
			fmt.Errorf("the model returned no content; the page may be protected or inaccessible"))
	}

	jsonText, err := llmutil.ExtractJSON(raw)
	if err != nil {
		return "", zerify.NewAgentError(stage, zerify.KindParse, err)
	}

	var out struct {
		Success bool   `json:"success"`
		Text    string `json:"text"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		return "", zerify.NewAgentError(stage, zerify.KindParse,
			fmt.Errorf("ingestion response was not in the expected format: %w", err))
	}
	if !out.Success {
		reason := out.Reason
		if reason == "" {
			reason = "the page might be protected, JavaScript-heavy, or primarily contain images"
		}
		return "", zerify.NewAgentError(stage, zerify.KindBlocked, fmt.Errorf("%s", reason))
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", zerify.NewAgentError(stage, zerify.KindBlocked,
			fmt.Errorf("the model reported success but returned no text; the page might be empty"))
	}
	return text, nil
}

// fetchPageText downloads the page and extracts its readable text.
func fetchPageText(ctx context.Context, rawURL string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Zerify/1.0 (content verification)")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, nav, footer, noscript, iframe").Remove()

	var b strings.Builder
	doc.Find("article p, main p, p").Each(func(_ int, s *goquery.Selection) {
		line := strings.TrimSpace(s.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
	})
	return strings.TrimSpace(b.String()), nil
}
