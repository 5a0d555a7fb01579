package common

import "time"

// FactKind distinguishes plain text facts from facts that hold a URL.
type FactKind string

const (
	FactKindText FactKind = "text"
	FactKindLink FactKind = "link"
)

// Valid reports whether k is one of the supported kinds.
func (k FactKind) Valid() bool {
	return k == FactKindText || k == FactKindLink
}

// Embedding is a vector tagged with the model that produced it. Two
// embeddings are only comparable when they come from the same model and
// have the same dimension.
type Embedding struct {
	Model  string    `json:"model"`
	Vector []float32 `json:"vector"`
}

// Dim returns the dimensionality of the vector.
func (e *Embedding) Dim() int {
	if e == nil {
		return 0
	}
	return len(e.Vector)
}

// Case is the isolation boundary for facts and relationships. Facts of one
// case are never compared against facts of another.
type Case struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Fact is one atomic piece of information stored for a case.
//
// Facts are append-only: only the layout coordinates and the tag
// associations change after creation. Embedding is nil when the embedding
// provider failed at creation time; such facts never take part in linking.
type Fact struct {
	ID        int64          `json:"id"`
	CaseID    int64          `json:"case_id"`
	Kind      FactKind       `json:"type"`
	Content   string         `json:"content"`
	Topic     string         `json:"topic"`
	Embedding *Embedding     `json:"embedding,omitempty"`
	X         *int           `json:"x,omitempty"`
	Y         *int           `json:"y,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Tags      []Tag          `json:"tags,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Relationship is a directed, typed and weighted edge between two facts of
// the same case. Automatically created edges always point from the newer
// fact (Source) to an older one (Target).
type Relationship struct {
	ID        int64     `json:"id"`
	CaseID    int64     `json:"case_id"`
	SourceID  int64     `json:"source"`
	TargetID  int64     `json:"target"`
	Type      string    `json:"type"`
	Strength  int       `json:"strength"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag is an analyst-defined label that can be attached to facts.
type Tag struct {
	ID        int64     `json:"id"`
	CaseID    int64     `json:"case_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Graph is the renderable view of a case.
type Graph struct {
	Nodes []Fact         `json:"nodes"`
	Links []Relationship `json:"links"`
}
