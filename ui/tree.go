// Package ui provides box-drawing helpers for rendering node trees in
// terminal output.
package ui

import "strings"

// Tree hierarchy symbols using box drawing characters
const (
	TreeBranch     = "├── " // Branch connector
	TreeLastBranch = "└── " // Last branch connector
	TreeVertical   = "│"    // Vertical line for continuing hierarchy

	TreeContinue = "│   " // Parent has more siblings below
	TreeIndent   = "    " // Parent was last, no vertical line needed
)

// BuildTreePrefix generates a tree prefix for a node at the given depth.
// isLast marks the node as its parent's final child; parentIsLast records,
// per ancestor level, whether that ancestor was its own parent's final child.
func BuildTreePrefix(depth int, isLast bool, parentIsLast []bool) string {
	if depth == 0 {
		return ""
	}

	var prefix strings.Builder
	for i := 0; i < depth-1; i++ {
		if i < len(parentIsLast) && parentIsLast[i] {
			prefix.WriteString(TreeIndent)
		} else {
			prefix.WriteString(TreeContinue)
		}
	}

	if isLast {
		prefix.WriteString(TreeLastBranch)
	} else {
		prefix.WriteString(TreeBranch)
	}
	return prefix.String()
}
