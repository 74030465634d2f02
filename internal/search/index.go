package search

// indexDefinition is the subset of the Azure AI Search index schema this
// service manages.
type indexDefinition struct {
	Name         string        `json:"name"`
	Fields       []indexField  `json:"fields"`
	VectorSearch *vectorSearch `json:"vectorSearch,omitempty"`
}

type indexField struct {
	Name                string `json:"name"`
	Type                string `json:"type"`
	Key                 bool   `json:"key,omitempty"`
	Searchable          bool   `json:"searchable"`
	Filterable          *bool  `json:"filterable,omitempty"`
	Analyzer            string `json:"analyzer,omitempty"`
	Dimensions          int    `json:"dimensions,omitempty"`
	VectorSearchProfile string `json:"vectorSearchProfile,omitempty"`
}

type vectorSearch struct {
	Profiles   []vectorProfile   `json:"profiles"`
	Algorithms []vectorAlgorithm `json:"algorithms"`
}

type vectorProfile struct {
	Name      string `json:"name"`
	Algorithm string `json:"algorithm"`
}

type vectorAlgorithm struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// defaultIndexDefinition describes the RAG index: a key, searchable content
// with the English analyzer, a filterable title, opaque metadata, and a
// 1536-dimension vector slot for embeddings added downstream.
func defaultIndexDefinition(name string) indexDefinition {
	return indexDefinition{
		Name: name,
		Fields: []indexField{
			{Name: "id", Type: "Edm.String", Key: true, Searchable: false},
			{Name: "content", Type: "Edm.String", Searchable: true, Analyzer: "en.microsoft"},
			{Name: "title", Type: "Edm.String", Searchable: true, Filterable: boolPtr(true)},
			{Name: "metadata", Type: "Edm.String", Searchable: false, Filterable: boolPtr(false)},
			{
				Name:                "vector",
				Type:                "Collection(Edm.Single)",
				Searchable:          true,
				Dimensions:          1536,
				VectorSearchProfile: "vector-profile",
			},
		},
		VectorSearch: &vectorSearch{
			Profiles:   []vectorProfile{{Name: "vector-profile", Algorithm: "hnsw-algorithm"}},
			Algorithms: []vectorAlgorithm{{Name: "hnsw-algorithm", Kind: "hnsw"}},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
