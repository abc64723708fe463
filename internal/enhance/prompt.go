package enhance

import (
    "strings"
)

const systemPrompt = "You are an assistant that enhances and validates web articles.\n" +
    "Tasks:\n" +
    "1) Provide a concise summary.\n" +
    "2) Expand with extra neutral context and background information.\n" +
    "3) If validation is requested, list main claims and provide reasoning/evidence " +
    "(state 'Likely true', 'Uncertain', or 'Likely false').\n" +
    "Output format: JSON with keys 'summary', 'expanded', 'validation' (validation optional).\n" +
    "Be factual, do not hallucinate sources. If you cannot verify, say so."

// SystemPrompt returns the default system message.
func SystemPrompt() string { return systemPrompt }

// UserPrompt renders the request parameters followed by the article text.
// text is expected to be truncated already.
func UserPrompt(req Request, text string) string {
    var sb strings.Builder
    sb.WriteString("Source URL: ")
    sb.WriteString(req.SourceURL)
    sb.WriteString("\nDetail level: ")
    sb.WriteString(string(req.Level))
    sb.WriteString("\nMode: ")
    sb.WriteString(string(req.Mode))
    sb.WriteString("\nValidate: ")
    if req.Validate {
        sb.WriteString("yes")
    } else {
        sb.WriteString("no")
    }
    sb.WriteString("\n\nArticle text:\n")
    sb.WriteString(text)
    return sb.String()
}
