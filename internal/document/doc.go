// Package document models nested translation documents (JSON or YAML) as
// ordered trees. It flattens a document into addressed string leaves and
// reassembles a translated copy with the original shape and key order.
package document
