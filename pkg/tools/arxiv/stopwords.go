package arxiv

// stopWords is the common-English filter applied to question keywords
// before abstract matching.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "do", "does", "did", "will", "would", "should",
		"can", "could", "may", "might", "must", "and", "but", "or", "nor",
		"for", "so", "yet", "in", "on", "at", "by", "from", "to", "with",
		"about", "above", "after", "again", "against", "all", "am", "as",
		"because", "before", "below", "between", "both", "during", "each",
		"few", "further", "here", "how", "i", "if", "into", "it", "its", "itself",
		"just", "me", "more", "most", "my", "myself", "no", "not", "now", "of",
		"off", "once", "only", "other", "our", "ours", "ourselves", "out", "over",
		"own", "same", "she", "he", "they", "them", "their", "theirs", "themselves",
		"then", "there", "these", "this", "those", "through", "too", "under",
		"until", "up", "very", "we", "what", "when", "where", "which", "while",
		"who", "whom", "why", "you", "your", "yours", "yourself", "yourselves",
	} {
		stopWords[w] = struct{}{}
	}
}
