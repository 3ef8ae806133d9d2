package domain

// AnswerSource cites a retrieved fragment backing a synthesized answer.
type AnswerSource struct {
	Excerpt    string  `json:"excerpt"`
	Source     string  `json:"source"`
	Type       string  `json:"type"`
	Similarity float64 `json:"similarity"`
}

// AnswerPackage is the complete result of a contextual question: the
// synthesized answer, an aggregate confidence in [0, 1] derived from
// retrieval similarity, and the sources it was grounded on. It is always
// best-effort; failures degrade to a low-confidence package.
type AnswerPackage struct {
	Question     string         `json:"question"`
	RoleContext  string         `json:"role_context"`
	Answer       string         `json:"answer"`
	Confidence   float64        `json:"confidence"`
	Sources      []AnswerSource `json:"sources"`
	ContextFound bool           `json:"context_found"`
}
