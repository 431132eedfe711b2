package models

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question string `json:"question"`
}

// Source cites one retrieved chunk so the caller can verify grounding.
type Source struct {
	Source string  `json:"source"`
	Pages  []int   `json:"pages"`
	Score  float64 `json:"score"`
}

// QueryResponse is the body of a successful POST /query.
// Sources preserve retrieval order (descending score).
type QueryResponse struct {
	Answer   string   `json:"answer"`
	Question string   `json:"question"`
	Model    string   `json:"model,omitempty"`
	Sources  []Source `json:"sources"`
}
