// Package search matches live-typed queries against KV keys and values
// across every namespace of every discovered project. Keys use ordered
// fuzzy matching, values plain substring containment with a context
// preview. Results stay grouped by project and namespace in key order.
package search
