package prompt

import "DailyDigest/internal/source"

// Instruction templates, one per source kind. The summarizer receives the
// template as the system instruction and the item text as the user content.

const papers = `You summarize academic paper abstracts.
Given a paper title and abstract, explain in a few short paragraphs:
what prior work could not do, the approach taken, and what was achieved.
Close with one plain-language sentence stating why the result matters.
Output only the summary.`

const news = `You summarize news stories for a daily digest.
Given a story title and its text, produce a concise summary of the key
facts in at most three sentences. Output only the summary.`

const forum = `You summarize discussion threads.
Given a post and its top comments, summarize the post in one or two
sentences, then describe the consensus of the discussion and quote or
paraphrase the most notable comment. Output only the summary.`

const tech = `You summarize technical blog articles.
Given an article title and body, summarize the main point, the key
technical details, and any practical takeaways in a short paragraph.
Output only the summary.`

const trending = `You describe trending open-source repositories.
Given a repository name and description, state in one or two sentences
what the project does and who would use it. Output only the summary.`

const generic = `Summarize the following content concisely.
Output only the summary.`

// ForKind returns the instruction template for a source kind.
func ForKind(kind source.Kind) string {
	switch kind {
	case source.KindPapers:
		return papers
	case source.KindNews:
		return news
	case source.KindForum:
		return forum
	case source.KindTech:
		return tech
	case source.KindTrending:
		return trending
	default:
		return generic
	}
}
