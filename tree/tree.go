// Package tree implements CART decision tree classifiers on gonum matrices.
//
// Trees split on midpoint thresholds for continuous features and on
// category subsets for features declared categorical. They are usable on
// their own and serve as the base learners of ensemble forests.
package tree

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/core/model"
	"github.com/sigmotion/harlearn/core/parallel"
	"github.com/sigmotion/harlearn/pkg/errors"
	"github.com/sigmotion/harlearn/pkg/log"
)

// predictChunkThreshold is the row count below which prediction stays
// sequential; goroutine fan-out costs more than the tree walks save.
const predictChunkThreshold = 1024

// Split quality criteria.
const (
	// CriterionGini selects splits by Gini impurity decrease.
	CriterionGini = "gini"
	// CriterionEntropy selects splits by information gain.
	CriterionEntropy = "entropy"
)

// DecisionTreeClassifier is a CART classifier. It predicts the class of a
// sample by routing it through learned threshold and category-subset splits
// down to a leaf holding a class distribution.
type DecisionTreeClassifier struct {
	model.BaseEstimator

	// Hyperparameters
	criterion           string
	maxDepth            int // 0 means unlimited
	minSamplesSplit     int
	minSamplesLeaf      int
	minImpurityDecrease float64 // 0 accepts any positive gain
	maxFeatures         int     // 0 means all features at every split
	randomState         int     // negative means nondeterministic
	categorical         map[int]int

	// Fitted state
	tree_      Tree
	classes_   []float64
	nClasses_  int
	nFeatures_ int
}

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithCriterion sets the split quality criterion, "gini" or "entropy".
func WithCriterion(criterion string) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.criterion = criterion
	}
}

// WithMaxDepth limits the tree depth. Zero or negative means unlimited.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples a node must hold
// to be considered for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples each child of a
// split must receive.
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesLeaf = n
	}
}

// WithMinImpurityDecrease sets the minimum weighted impurity decrease a
// split must achieve, with the node's sample fraction as the weight. Zero
// accepts any positive gain.
func WithMinImpurityDecrease(d float64) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.minImpurityDecrease = d
	}
}

// WithMaxFeatures bounds the number of features examined at each split.
// Zero or negative means all features.
func WithMaxFeatures(n int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.maxFeatures = n
	}
}

// WithRandomState seeds the feature subsampling. Negative values leave the
// tree nondeterministic.
func WithRandomState(seed int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.randomState = seed
	}
}

// WithCategoricalFeatures declares categorical features as a map from
// feature index to category count. Declared features split on category
// subsets instead of thresholds.
func WithCategoricalFeatures(features map[int]int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.categorical = features
	}
}

// NewDecisionTreeClassifier creates a decision tree classifier. Defaults
// follow scikit-learn: gini criterion, unlimited depth, min_samples_split=2,
// min_samples_leaf=1.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		criterion:           CriterionGini,
		maxDepth:            0,
		minSamplesSplit:     2,
		minSamplesLeaf:      1,
		minImpurityDecrease: 0,
		maxFeatures:         0,
		randomState:         -1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// treeBuilder holds the per-Fit growing state.
type treeBuilder struct {
	splitter

	maxDepth            int
	minSamplesSplit     int
	minImpurityDecrease float64
	maxFeatures         int
	nFeatures           int
	nTotal              int
	classes             []float64
	rng                 *rand.Rand
	importance          []float64
}

// Fit grows the tree from training data. X is n x d, y is an n x 1 column
// of class values; the distinct values of y become the classes in ascending
// order.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	if X == nil || y == nil {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "nil input")
	}
	r, c := X.Dims()
	yr, yc := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if yr != r {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", r, yr, 0)
	}
	if yc != 1 {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", 1, yc, 1)
	}
	if dt.criterion != CriterionGini && dt.criterion != CriterionEntropy {
		return errors.NewValueError("DecisionTreeClassifier.Fit",
			fmt.Sprintf("unknown criterion %q, expected \"gini\" or \"entropy\"", dt.criterion))
	}

	// Map class values to contiguous indices.
	distinct := make(map[float64]struct{}, 8)
	for i := 0; i < r; i++ {
		distinct[y.At(i, 0)] = struct{}{}
	}
	classes := make([]float64, 0, len(distinct))
	for v := range distinct {
		classes = append(classes, v)
	}
	sort.Float64s(classes)

	classIdx := make(map[float64]int, len(classes))
	for i, v := range classes {
		classIdx[v] = i
	}
	yIdx := make([]int, r)
	for i := 0; i < r; i++ {
		yIdx[i] = classIdx[y.At(i, 0)]
	}

	minSplit := dt.minSamplesSplit
	if minSplit < 2 {
		minSplit = 2
	}
	minLeaf := dt.minSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}

	var rng *rand.Rand
	if dt.randomState >= 0 {
		rng = rand.New(rand.NewPCG(uint64(dt.randomState), uint64(dt.randomState)))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	builder := &treeBuilder{
		splitter: splitter{
			X:              X,
			yIdx:           yIdx,
			nClasses:       len(classes),
			criterion:      dt.criterion,
			minSamplesLeaf: minLeaf,
			categorical:    dt.categorical,
		},
		maxDepth:            dt.maxDepth,
		minSamplesSplit:     minSplit,
		minImpurityDecrease: dt.minImpurityDecrease,
		maxFeatures:         dt.maxFeatures,
		nFeatures:           c,
		nTotal:              r,
		classes:             classes,
		rng:                 rng,
		importance:          make([]float64, c),
	}

	tree := Tree{Nodes: []Node{}}
	rootIndices := make([]int, r)
	for i := 0; i < r; i++ {
		rootIndices[i] = i
	}
	builder.buildNode(&tree, rootIndices, -1, 0)

	tree.NumLeaves = tree.countLeaves()
	tree.MaxDepth = tree.depth()
	tree.FeatureImportance = normalizeImportance(builder.importance)

	dt.tree_ = tree
	dt.classes_ = classes
	dt.nClasses_ = len(classes)
	dt.nFeatures_ = c
	dt.SetFitted()

	log.GetLoggerWithName("tree").Debug("Decision tree trained",
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.ClassesKey, dt.nClasses_,
		"leaves", tree.NumLeaves,
		"depth", tree.MaxDepth,
	)
	return nil
}

// buildNode recursively grows the tree and returns the new node's index.
func (b *treeBuilder) buildNode(tree *Tree, indices []int, parentIdx, depth int) int {
	nodeIdx := len(tree.Nodes)

	counts := b.classCounts(indices)
	if (b.maxDepth > 0 && depth >= b.maxDepth) ||
		len(indices) < b.minSamplesSplit ||
		isPure(counts) {
		tree.Nodes = append(tree.Nodes, b.makeLeaf(nodeIdx, parentIdx, indices, counts))
		return nodeIdx
	}

	bestSplit := b.findBestSplit(indices, b.candidateFeatures())
	weightedGain := float64(len(indices)) / float64(b.nTotal) * bestSplit.Gain
	if bestSplit.Gain <= 0 || weightedGain < b.minImpurityDecrease {
		tree.Nodes = append(tree.Nodes, b.makeLeaf(nodeIdx, parentIdx, indices, counts))
		return nodeIdx
	}

	nodeType := NumericalNode
	if bestSplit.Categorical {
		nodeType = CategoricalNode
	}
	tree.Nodes = append(tree.Nodes, Node{
		NodeID:       nodeIdx,
		ParentID:     parentIdx,
		LeftChild:    -1,
		RightChild:   -1,
		NodeType:     nodeType,
		SplitFeature: bestSplit.Feature,
		Threshold:    bestSplit.Threshold,
		Categories:   bestSplit.Categories,
		Gain:         bestSplit.Gain,
	})

	b.importance[bestSplit.Feature] += weightedGain

	leftIndices, rightIndices := b.splitIndices(indices, bestSplit)
	leftChild := b.buildNode(tree, leftIndices, nodeIdx, depth+1)
	rightChild := b.buildNode(tree, rightIndices, nodeIdx, depth+1)

	tree.Nodes[nodeIdx].LeftChild = leftChild
	tree.Nodes[nodeIdx].RightChild = rightChild

	return nodeIdx
}

// makeLeaf builds a terminal node from the class tally of its samples.
func (b *treeBuilder) makeLeaf(nodeIdx, parentIdx int, indices []int, counts []int) Node {
	proba := make([]float64, len(counts))
	majority := 0
	for cls, c := range counts {
		proba[cls] = float64(c) / float64(len(indices))
		if c > counts[majority] {
			majority = cls
		}
	}
	return Node{
		NodeID:     nodeIdx,
		ParentID:   parentIdx,
		LeftChild:  -1,
		RightChild: -1,
		NodeType:   LeafNode,
		LeafValue:  b.classes[majority],
		LeafProba:  proba,
		LeafCount:  len(indices),
	}
}

// candidateFeatures returns the feature indices examined at one split,
// either all of them or a random subset of maxFeatures.
func (b *treeBuilder) candidateFeatures() []int {
	if b.maxFeatures <= 0 || b.maxFeatures >= b.nFeatures {
		features := make([]int, b.nFeatures)
		for j := range features {
			features[j] = j
		}
		return features
	}

	perm := b.rng.Perm(b.nFeatures)
	features := perm[:b.maxFeatures]
	sort.Ints(features)
	return features
}

// isPure reports whether all samples share one class.
func isPure(counts []int) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

// normalizeImportance scales the raw impurity decreases to sum to one.
func normalizeImportance(importance []float64) []float64 {
	total := 0.0
	for _, v := range importance {
		total += v
	}
	normalized := make([]float64, len(importance))
	if total == 0 {
		return normalized
	}
	for j, v := range importance {
		normalized[j] = v / total
	}
	return normalized
}

// Predict returns an n x 1 column of predicted class values.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}
	r, c := X.Dims()
	if c != dt.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.Predict", dt.nFeatures_, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	walkErr := dt.walkRows("DecisionTreeClassifier.Predict", X, r, c,
		func(i int, leaf *Node) {
			predictions.Set(i, 0, leaf.LeafValue)
		})
	if walkErr != nil {
		return nil, walkErr
	}
	return predictions, nil
}

// PredictProba returns an n x k matrix of class probabilities, columns in
// ascending class value order.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	r, c := X.Dims()
	if c != dt.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", dt.nFeatures_, c, 1)
	}

	probas := mat.NewDense(r, dt.nClasses_, nil)
	walkErr := dt.walkRows("DecisionTreeClassifier.PredictProba", X, r, c,
		func(i int, leaf *Node) {
			for j := 0; j < dt.nClasses_; j++ {
				probas.Set(i, j, leaf.LeafProba[j])
			}
		})
	if walkErr != nil {
		return nil, walkErr
	}
	return probas, nil
}

// walkRows routes every row of X to its leaf and hands the row index and
// leaf to emit. Rows are chunked across goroutines when there are enough of
// them; emit must only write state owned by its row.
func (dt *DecisionTreeClassifier) walkRows(op string, X mat.Matrix, r, c int, emit func(i int, leaf *Node)) error {
	var mu sync.Mutex
	var walkErr error

	parallel.ParallelizeWithThreshold(r, predictChunkThreshold, func(start, end int) {
		features := make([]float64, c)
		for i := start; i < end; i++ {
			mat.Row(features, i, X)
			leaf := dt.tree_.leafFor(features)
			if leaf == nil {
				mu.Lock()
				if walkErr == nil {
					walkErr = errors.NewModelError(op, "corrupt tree: no leaf reached", nil)
				}
				mu.Unlock()
				return
			}
			emit(i, leaf)
		}
	})
	return walkErr
}

// Score returns the mean accuracy on the given data, or 0 when the model is
// not fitted or the input shape is wrong.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	predictions, err := dt.Predict(X)
	if err != nil {
		return 0
	}
	r, _ := y.Dims()
	if pr, _ := predictions.Dims(); pr != r || r == 0 {
		return 0
	}

	correct := 0
	for i := 0; i < r; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(r)
}

// Classes returns the class values in ascending order.
func (dt *DecisionTreeClassifier) Classes() []float64 {
	out := make([]float64, len(dt.classes_))
	copy(out, dt.classes_)
	return out
}

// NumClasses returns the number of classes seen during Fit.
func (dt *DecisionTreeClassifier) NumClasses() int {
	return dt.nClasses_
}

// NumFeatures returns the number of features seen during Fit.
func (dt *DecisionTreeClassifier) NumFeatures() int {
	return dt.nFeatures_
}

// GetFeatureImportances returns the normalized impurity decrease per
// feature. The values sum to one unless the tree is a single leaf.
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	if !dt.IsFitted() {
		return nil
	}
	out := make([]float64, len(dt.tree_.FeatureImportance))
	copy(out, dt.tree_.FeatureImportance)
	return out
}

// GetDepth returns the depth of the fitted tree.
func (dt *DecisionTreeClassifier) GetDepth() int {
	return dt.tree_.MaxDepth
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	return dt.tree_.NumLeaves
}

// Tree returns the fitted tree structure.
func (dt *DecisionTreeClassifier) Tree() *Tree {
	return &dt.tree_
}

// GetParams returns the hyperparameters.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":             dt.criterion,
		"max_depth":             dt.maxDepth,
		"min_samples_split":     dt.minSamplesSplit,
		"min_samples_leaf":      dt.minSamplesLeaf,
		"min_impurity_decrease": dt.minImpurityDecrease,
		"max_features":          dt.maxFeatures,
		"random_state":          dt.randomState,
	}
}

// SetParams updates hyperparameters from a map. Unknown keys and wrongly
// typed values are rejected.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "criterion":
			s, ok := value.(string)
			if !ok {
				return errors.NewValidationError("criterion", "must be a string", value)
			}
			if s != CriterionGini && s != CriterionEntropy {
				return errors.NewValidationError("criterion", "must be \"gini\" or \"entropy\"", value)
			}
			dt.criterion = s
		case "max_depth":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("max_depth", "must be an int", value)
			}
			dt.maxDepth = n
		case "min_samples_split":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("min_samples_split", "must be an int", value)
			}
			dt.minSamplesSplit = n
		case "min_samples_leaf":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("min_samples_leaf", "must be an int", value)
			}
			dt.minSamplesLeaf = n
		case "min_impurity_decrease":
			f, ok := value.(float64)
			if !ok {
				return errors.NewValidationError("min_impurity_decrease", "must be a float64", value)
			}
			dt.minImpurityDecrease = f
		case "max_features":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("max_features", "must be an int", value)
			}
			dt.maxFeatures = n
		case "random_state":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("random_state", "must be an int", value)
			}
			dt.randomState = n
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// String returns a printable representation of the classifier.
func (dt *DecisionTreeClassifier) String() string {
	if !dt.IsFitted() {
		return fmt.Sprintf("DecisionTreeClassifier(criterion=%s, max_depth=%d)", dt.criterion, dt.maxDepth)
	}
	return fmt.Sprintf("DecisionTreeClassifier(criterion=%s, max_depth=%d, n_classes=%d, n_leaves=%d)",
		dt.criterion, dt.maxDepth, dt.nClasses_, dt.tree_.NumLeaves)
}

// treeGobModel mirrors the classifier for gob round-trips.
type treeGobModel struct {
	Criterion           string
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MinImpurityDecrease float64
	MaxFeatures         int
	RandomState         int
	Categorical         map[int]int
	Tree                Tree
	Classes             []float64
	NClasses            int
	NFeatures           int
	Fitted              bool
}

// GobEncode serializes the classifier, fitted state included.
func (dt *DecisionTreeClassifier) GobEncode() ([]byte, error) {
	state := treeGobModel{
		Criterion:           dt.criterion,
		MaxDepth:            dt.maxDepth,
		MinSamplesSplit:     dt.minSamplesSplit,
		MinSamplesLeaf:      dt.minSamplesLeaf,
		MinImpurityDecrease: dt.minImpurityDecrease,
		MaxFeatures:         dt.maxFeatures,
		RandomState:         dt.randomState,
		Categorical:         dt.categorical,
		Tree:                dt.tree_,
		Classes:             dt.classes_,
		NClasses:            dt.nClasses_,
		NFeatures:           dt.nFeatures_,
		Fitted:              dt.IsFitted(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores a classifier serialized by GobEncode.
func (dt *DecisionTreeClassifier) GobDecode(data []byte) error {
	var state treeGobModel
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}

	dt.criterion = state.Criterion
	dt.maxDepth = state.MaxDepth
	dt.minSamplesSplit = state.MinSamplesSplit
	dt.minSamplesLeaf = state.MinSamplesLeaf
	dt.minImpurityDecrease = state.MinImpurityDecrease
	dt.maxFeatures = state.MaxFeatures
	dt.randomState = state.RandomState
	dt.categorical = state.Categorical
	dt.tree_ = state.Tree
	dt.classes_ = state.Classes
	dt.nClasses_ = state.NClasses
	dt.nFeatures_ = state.NFeatures
	if state.Fitted {
		dt.SetFitted()
	} else {
		dt.Reset()
	}
	return nil
}
