// Package types defines the shared data model for kvpeek.
package types

// Project is a worker codebase discovered in the monorepo. Identity is the
// filesystem path; the binding list is fixed until the next discovery pass.
type Project struct {
	Name     string
	Path     string
	Bindings []NamespaceBinding
}

// NamespaceBinding pairs a human-readable binding name with the opaque
// namespace identifier the local runtime keys its storage by.
type NamespaceBinding struct {
	Binding string
	ID      string
}

// Entry is a single key-value record as the local runtime persisted it.
// The value itself lives in a content-addressed blob file referenced by
// BlobID; Expiration is epoch milliseconds when set.
type Entry struct {
	Key        string
	BlobID     string
	Expiration *int64
	Metadata   *string
}

// SearchResult is one matching entry from a search pass. MatchedValue
// reports whether the match was found in the value rather than the key;
// Preview carries a snippet of the value around the match in that case.
type SearchResult struct {
	Project      string
	ProjectPath  string
	Namespace    string
	NamespaceID  string
	Key          string
	MatchedKey   bool
	MatchedValue bool
	Preview      string
}
