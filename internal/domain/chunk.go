package domain

// Chunk is a bounded fragment of a knowledge record's text, sized for
// embedding. Content is an exact substring of the parent record so that
// concatenating a record's chunks with overlaps removed reconstructs it.
type Chunk struct {
	ID       string
	Content  string
	Metadata map[string]string
}
