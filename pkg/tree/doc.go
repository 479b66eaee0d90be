// Package tree holds the webpack configuration tree and the merge rules
// every block applies to it.
//
// # Absent vs present
//
// A key is absent when it is missing from its object or holds nil. Any
// other value is present, including false, 0 and "". Blocks only fill
// absent keys, so a caller value always wins over a block default.
//
// # Merge categories
//
//   - Scalars: SetDefault fills an absent key; Set forces a key the
//     pipeline owns outright.
//   - Objects: Object returns the nested object for a key, creating it when
//     absent, so a block extends the fields it knows and leaves siblings
//     alone.
//   - Lists: AppendList appends in place and never replaces existing items.
//
// Loader rules go through AddRule, which keeps at most one top-level
// first-match (oneOf) group per tree.
package tree
