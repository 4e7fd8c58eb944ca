// Package change holds the annotated comparison tree that an external
// semantic-diff engine produces for a pair of JSON or YAML documents,
// together with its JSON interchange decoder and the path based block
// id scheme shared by all view packages.
//
// The tree is the single input of everything else in this module. A
// node may be addressable (it has a stable id derived from its path)
// and may carry an edit with an action and a severity classification.
// Aggregate change counts are computed once at decode time; an added
// or removed container subsumes its descendants, so its whole subtree
// counts as one change.
package change
