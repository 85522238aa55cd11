package summary

import (
	"github.com/theopenlane/policypeek/internal/types"
)

const briefPrompt = `Analyze this privacy policy and provide a BRIEF summary with only the most critical information:

**Key Points** (max 3 bullets): Most important takeaways
**Data Collection** (max 2 bullets): What data is collected
**Risks** (max 2 bullets): Main privacy concerns or unusual terms

Keep it SHORT. Only include truly important information. Use brief bullet points.

Document to analyze:
`

const deepPrompt = `Perform a comprehensive deep analysis of this privacy policy. Provide detailed insights on:

**Key Points**: All important takeaways and notable terms
**Data Collection**: Detailed breakdown of what data is collected, how, and why
**Data Usage**: How the collected data is used, processed, and stored
**Third-Party Sharing**: Who receives the data and under what circumstances
**User Rights**: What rights users have (access, deletion, opt-out, etc.)
**Data Retention**: How long data is kept
**Security Measures**: How data is protected
**Risks & Red Flags**: Privacy concerns, unusual terms, vague language, or problematic clauses
**Cookies & Tracking**: Information about cookies, tracking, and analytics
**International Transfers**: Data transfers across borders
**Changes to Policy**: How policy updates are handled
**Contact & Compliance**: How to contact and what regulations they follow

Be thorough and specific. Include quotes from the policy when highlighting concerns.

Document to analyze:
`

// DeepSections are the subsection headings requested by the deep prompt
var DeepSections = []string{
	"Key Points",
	"Data Collection",
	"Data Usage",
	"Third-Party Sharing",
	"User Rights",
	"Data Retention",
	"Security Measures",
	"Risks & Red Flags",
	"Cookies & Tracking",
	"International Transfers",
	"Changes to Policy",
	"Contact & Compliance",
}

// BuildPrompt embeds the document text in the template for mode
func BuildPrompt(mode types.Mode, text string) string {
	if mode == types.ModeDeep {
		return deepPrompt + text
	}

	return briefPrompt + text
}
