package summary

import (
	"fmt"
	"strings"

	"github.com/seenimoa/tickerpulse/pkg/models"
)

// maxPromptHeadlines caps how many headlines go into a summary prompt.
const maxPromptHeadlines = 5

// maxTitleChars caps each headline line in a prompt, in characters.
const maxTitleChars = 500

// SummaryPrompt builds the news-summary request for one ticker.
func SummaryPrompt(ticker string, headlines []models.ScoredHeadline, compound float64) string {
	var b strings.Builder
	for i, h := range headlines {
		if i == maxPromptHeadlines {
			break
		}
		title := h.Title
		if r := []rune(title); len(r) > maxTitleChars {
			title = string(r[:maxTitleChars]) + "..."
		}
		fmt.Fprintf(&b, "- %s (%s %s, score %+.2f)\n", title, h.DateText, h.TimeText, h.Compound)
	}
	if b.Len() == 0 {
		b.WriteString("- No recent headlines were found.\n")
	}

	return fmt.Sprintf(`Analyze the following news about %s and provide a concise summary:

%s
General sentiment score: %.2f (-1 very negative, +1 very positive)

Please provide:
1. Summary of main topics (maximum 3 points)
2. Potential impact on stock price
3. Key factors to monitor

Keep the response in English and concise (maximum 200 words).`, ticker, b.String(), compound)
}

// AdvicePrompt builds the investment-assistant request.
func AdvicePrompt(question, profile string) string {
	if strings.TrimSpace(profile) == "" {
		profile = "Not specified"
	}
	return fmt.Sprintf(`You are an expert investment advisor specializing in stock analysis and investment strategies.

Investment Profile: %s
User Question: %s

Guidelines:
1. Provide practical, actionable investment advice
2. Consider risk management and diversification
3. Explain your reasoning clearly
4. Keep responses concise and professional
5. Include relevant disclaimers about investment risks

Respond in English with practical advice.`, profile, question)
}
