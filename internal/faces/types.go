package faces

// Embedding is a face descriptor as produced by an encoder. All embeddings
// compared with each other must come from the same encoder.
type Embedding []float32

// KnownFace is one enrolled image of an identity. Several entries may share a Name.
type KnownFace struct {
	Name      string
	Embedding Embedding
	Source    string // image path the embedding was computed from
}

// Match is the nearest known face to a probe embedding.
type Match struct {
	Face     KnownFace
	Distance float64
}

// ReloadMode controls what Enroll does after writing a new image.
type ReloadMode string

const (
	// ReloadFull rescans the whole store.
	ReloadFull ReloadMode = "full"
	// ReloadIncremental encodes only the new image.
	ReloadIncremental ReloadMode = "incremental"
)
