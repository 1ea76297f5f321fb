package routing

import "regexp"

// huggingFacePaperPattern matches Hugging Face paper links that carry a
// modern arXiv identifier.
var huggingFacePaperPattern = regexp.MustCompile(`https://huggingface\.co/papers/(\d{4}\.\d{5})`)

// RewritePaperLink canonicalizes an utterance containing a Hugging Face
// paper link into the short-form arXiv reference. Non-matching text is
// returned unchanged; the rewrite is idempotent because the canonical
// form no longer matches the pattern.
func RewritePaperLink(text string) string {
	m := huggingFacePaperPattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return "arXiv:" + m[1]
}
