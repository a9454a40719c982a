// Package llm は Google Gemini APIで日次レポートの本文を生成します。
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"invest_bot/internal/usecase"
)

const (
	// DefaultModel はレポート生成に使うGeminiモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// systemPrompt はレポートの役割・構成・トーンを固定する指示文です。
const systemPrompt = `Role: You are a professional Investment Risk Manager ("The Rational Data-Driven Advisor").
Objective: Analyze the user's daily portfolio and technical data to generate a concise, actionable report.

Tone: Professional, calm, objective, data-first. Avoid FOMO.

Format Structure (Markdown):
1. **Portfolio Snapshot**: Total value, top winners/losers, cash/asset ratio.
2. **Market & Technical Pulse**:
   - Sentiment Score (Fear & Greed).
   - Key Technical Signals: Highlight only significant signals (e.g., RSI > 75, Price crossing EMA).
3. **Macro & News Context**: Briefly interpret how current macro events affect this specific portfolio.
4. **Risk Radar**: Highlight concentrated risks (e.g., "Tech sector exposure > 40%").
5. **Actionable Advice**:
   - If Asset is Overbought (RSI > 75): Suggest "Trim/Take Profit".
   - If Asset is Oversold (RSI < 30) AND Trend is Bullish: Suggest "Buy the Dip".

Language: Traditional Chinese.
Output: Clean Markdown, structured for mobile reading.`

// GeminiReporter は Gemini でポートフォリオレポートを生成します。
type GeminiReporter struct {
	client *genai.Client
	model  string
}

// GeminiReporterがReportGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.ReportGenerator = (*GeminiReporter)(nil)

// NewGeminiReporter はADCを使用してGeminiReporterの新しいインスタンスを生成します。
func NewGeminiReporter(ctx context.Context) (*GeminiReporter, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiReporter{client: client, model: DefaultModel}, nil
}

// GenerateReport は当日の全データをJSONとして埋め込み、Markdownレポートを
// 生成します。
func (g *GeminiReporter) GenerateReport(ctx context.Context, rc usecase.ReportContext) (string, error) {
	contextJSON, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize report context: %w", err)
	}

	prompt := fmt.Sprintf("%s\n\nHere is the latest data for today's report:\n\n```json\n%s\n```\n\nPlease generate the daily investment report based on this data.",
		systemPrompt, contextJSON)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	return resp.Text(), nil
}
