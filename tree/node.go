package tree

import "math"

// NodeType identifies how a node routes samples.
type NodeType int

const (
	// LeafNode represents a terminal node with a class distribution
	LeafNode NodeType = iota
	// NumericalNode represents a node with a threshold split
	NumericalNode
	// CategoricalNode represents a node with a category-subset split
	CategoricalNode
)

// Node is a single node in a decision tree. Nodes are stored in a flat
// array and reference each other by index.
type Node struct {
	// Node identification
	NodeID     int      // Index of the node in Tree.Nodes
	ParentID   int      // Parent node index (-1 for root)
	LeftChild  int      // Left child index (-1 if leaf)
	RightChild int      // Right child index (-1 if leaf)
	NodeType   NodeType // Type of the node

	// Split information (for non-leaf nodes)
	SplitFeature int     // Feature index used for splitting
	Threshold    float64 // Threshold for numerical splits
	Categories   []int   // Category values routed left for categorical splits
	Gain         float64 // Impurity decrease achieved by the split

	// Leaf information (for leaf nodes)
	LeafValue float64   // Majority class value at the leaf
	LeafProba []float64 // Class distribution at the leaf, in class order
	LeafCount int       // Number of training samples at the leaf
}

// IsLeaf reports whether the node is terminal.
func (n *Node) IsLeaf() bool {
	return n.NodeType == LeafNode
}

// Tree is a flat-array decision tree.
type Tree struct {
	// Tree metadata
	NumLeaves int // Number of leaf nodes
	MaxDepth  int // Depth of the deepest leaf (root has depth 0)

	// Node storage
	Nodes []Node // All nodes, root at index 0

	// FeatureImportance holds the normalized impurity decrease
	// attributed to each feature.
	FeatureImportance []float64
}

// leafFor routes a feature row to its leaf. NaN feature values follow the
// left branch.
func (t *Tree) leafFor(features []float64) *Node {
	nodeID := 0
	for nodeID >= 0 && nodeID < len(t.Nodes) {
		node := &t.Nodes[nodeID]

		if node.IsLeaf() {
			return node
		}

		featureValue := features[node.SplitFeature]
		if math.IsNaN(featureValue) {
			nodeID = node.LeftChild
			continue
		}

		switch node.NodeType {
		case NumericalNode:
			if featureValue <= node.Threshold {
				nodeID = node.LeftChild
			} else {
				nodeID = node.RightChild
			}
		case CategoricalNode:
			inCategories := false
			intValue := int(featureValue)
			for _, cat := range node.Categories {
				if intValue == cat {
					inCategories = true
					break
				}
			}
			if inCategories {
				nodeID = node.LeftChild
			} else {
				nodeID = node.RightChild
			}
		default:
			return node
		}
	}
	return nil
}

// countLeaves returns the number of terminal nodes.
func (t *Tree) countLeaves() int {
	count := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			count++
		}
	}
	return count
}

// depth returns the depth of the deepest leaf.
func (t *Tree) depth() int {
	maxDepth := 0
	for i := range t.Nodes {
		if !t.Nodes[i].IsLeaf() {
			continue
		}
		d := 0
		for p := t.Nodes[i].ParentID; p >= 0; p = t.Nodes[p].ParentID {
			d++
		}
		if d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}
