// Package ensemble implements random forest classification by bagging CART
// decision trees.
//
// Each tree trains on a bootstrap sample with a random feature subset at
// every split, and prediction soft-votes by averaging the per-tree class
// distributions. Training is deterministic for a fixed seed: every tree
// draws from its own derived random stream, so the result does not depend
// on the worker count.
package ensemble

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sigmotion/harlearn/core/model"
	"github.com/sigmotion/harlearn/core/parallel"
	"github.com/sigmotion/harlearn/metrics"
	"github.com/sigmotion/harlearn/pkg/errors"
	"github.com/sigmotion/harlearn/pkg/log"
	"github.com/sigmotion/harlearn/tree"
)

// Feature subset strategies for WithFeatureSubsetStrategy.
const (
	// FeatureSubsetAuto uses sqrt(n) features per split.
	FeatureSubsetAuto = "auto"
	// FeatureSubsetSqrt uses sqrt(n) features per split.
	FeatureSubsetSqrt = "sqrt"
	// FeatureSubsetLog2 uses log2(n) features per split.
	FeatureSubsetLog2 = "log2"
	// FeatureSubsetAll uses every feature at every split.
	FeatureSubsetAll = "all"
	// FeatureSubsetOneThird uses n/3 features per split.
	FeatureSubsetOneThird = "onethird"
)

// RandomForestClassifier is a bagged ensemble of decision trees with
// soft voting.
type RandomForestClassifier struct {
	model.BaseEstimator

	// Hyperparameters
	numTrees              int
	criterion             string
	maxDepth              int // 0 means unlimited
	minSamplesSplit       int
	minSamplesLeaf        int
	maxFeatures           int // explicit per-split feature count, overrides the strategy
	featureSubsetStrategy string
	bootstrap             bool
	oobScore              bool
	seed                  int // negative means nondeterministic
	numWorkers            int // 0 means one worker per CPU core
	categorical           map[int]int

	// Fitted state
	trees_              []*tree.DecisionTreeClassifier
	classes_            []float64
	nClasses_           int
	nFeatures_          int
	featureImportances_ []float64
	oobScore_           float64
	hasOOB_             bool
}

// Option configures a RandomForestClassifier.
type Option func(*RandomForestClassifier)

// WithNumTrees sets the number of trees in the forest.
func WithNumTrees(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.numTrees = n
	}
}

// WithCriterion sets the split quality criterion, "gini" or "entropy".
func WithCriterion(criterion string) Option {
	return func(rf *RandomForestClassifier) {
		rf.criterion = criterion
	}
}

// WithMaxDepth limits the depth of every tree. Zero or negative means
// unlimited.
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestClassifier) {
		rf.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum node size considered for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples per leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.minSamplesLeaf = n
	}
}

// WithMaxFeatures fixes the number of features examined at each split,
// overriding the subset strategy.
func WithMaxFeatures(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.maxFeatures = n
	}
}

// WithFeatureSubsetStrategy selects how many features each split examines:
// "auto", "sqrt", "log2", "onethird" or "all".
func WithFeatureSubsetStrategy(strategy string) Option {
	return func(rf *RandomForestClassifier) {
		rf.featureSubsetStrategy = strategy
	}
}

// WithBootstrap toggles bootstrap sampling of training rows per tree.
func WithBootstrap(bootstrap bool) Option {
	return func(rf *RandomForestClassifier) {
		rf.bootstrap = bootstrap
	}
}

// WithOOBScore toggles out-of-bag accuracy estimation during Fit. Requires
// bootstrap sampling.
func WithOOBScore(enabled bool) Option {
	return func(rf *RandomForestClassifier) {
		rf.oobScore = enabled
	}
}

// WithSeed seeds the bootstrap and feature sampling. Negative values leave
// the forest nondeterministic.
func WithSeed(seed int) Option {
	return func(rf *RandomForestClassifier) {
		rf.seed = seed
	}
}

// WithNumWorkers bounds the goroutines used for tree training. Zero or
// negative means one worker per CPU core.
func WithNumWorkers(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.numWorkers = n
	}
}

// WithCategoricalFeatures declares categorical features as a map from
// feature index to category count, passed through to every tree.
func WithCategoricalFeatures(features map[int]int) Option {
	return func(rf *RandomForestClassifier) {
		rf.categorical = features
	}
}

// NewRandomForestClassifier creates a random forest classifier. Defaults:
// 20 trees, gini criterion, unlimited depth, sqrt(n) features per split,
// bootstrap sampling on.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		numTrees:              20,
		criterion:             tree.CriterionGini,
		maxDepth:              0,
		minSamplesSplit:       2,
		minSamplesLeaf:        1,
		maxFeatures:           0,
		featureSubsetStrategy: FeatureSubsetAuto,
		bootstrap:             true,
		oobScore:              false,
		seed:                  -1,
		numWorkers:            0,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// resolveMaxFeatures turns the subset strategy into a per-split feature
// count. An explicit maxFeatures wins over the strategy.
func resolveMaxFeatures(strategy string, maxFeatures, nFeatures int) (int, error) {
	if maxFeatures > 0 {
		if maxFeatures > nFeatures {
			return nFeatures, nil
		}
		return maxFeatures, nil
	}

	var k int
	switch strategy {
	case "", FeatureSubsetAuto, FeatureSubsetSqrt:
		k = int(math.Sqrt(float64(nFeatures)))
	case FeatureSubsetLog2:
		k = int(math.Log2(float64(nFeatures)))
	case FeatureSubsetOneThird:
		k = nFeatures / 3
	case FeatureSubsetAll:
		return nFeatures, nil
	default:
		return 0, errors.NewValueError("RandomForestClassifier.Fit",
			fmt.Sprintf("unknown feature subset strategy %q", strategy))
	}

	if k < 1 {
		k = 1
	}
	return k, nil
}

// Fit trains the forest. X is n x d, y is an n x 1 column of class values;
// the distinct values of y become the classes in ascending order.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	if X == nil || y == nil {
		return errors.NewValueError("RandomForestClassifier.Fit", "nil input")
	}
	r, c := X.Dims()
	yr, yc := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("RandomForestClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if yr != r {
		return errors.NewDimensionError("RandomForestClassifier.Fit", r, yr, 0)
	}
	if yc != 1 {
		return errors.NewDimensionError("RandomForestClassifier.Fit", 1, yc, 1)
	}
	if rf.numTrees < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", rf.numTrees)
	}
	if rf.oobScore && !rf.bootstrap {
		return errors.NewValidationError("oob_score", "requires bootstrap sampling", rf.oobScore)
	}

	maxFeatures, err := resolveMaxFeatures(rf.featureSubsetStrategy, rf.maxFeatures, c)
	if err != nil {
		return err
	}

	rf.classes_ = distinctSorted(y, r)
	rf.nClasses_ = len(rf.classes_)
	rf.nFeatures_ = c

	baseSeed := rf.seed
	if baseSeed < 0 {
		baseSeed = int(rand.Uint64() >> 33)
	}

	trees := make([]*tree.DecisionTreeClassifier, rf.numTrees)
	errs := make([]error, rf.numTrees)
	var inBag [][]bool
	if rf.oobScore {
		inBag = make([][]bool, rf.numTrees)
	}

	parallel.ParallelizeWorkers(rf.numTrees, rf.numWorkers, func(start, end int) {
		for i := start; i < end; i++ {
			// Every tree draws from its own stream so the ensemble is
			// reproducible regardless of how trees map onto workers.
			rng := rand.New(rand.NewPCG(uint64(baseSeed), uint64(i)))

			indices := make([]int, r)
			if rf.bootstrap {
				for j := range indices {
					indices[j] = rng.IntN(r)
				}
			} else {
				for j := range indices {
					indices[j] = j
				}
			}
			if rf.oobScore {
				bag := make([]bool, r)
				for _, idx := range indices {
					bag[idx] = true
				}
				inBag[i] = bag
			}

			t := tree.NewDecisionTreeClassifier(
				tree.WithCriterion(rf.criterion),
				tree.WithMaxDepth(rf.maxDepth),
				tree.WithMinSamplesSplit(rf.minSamplesSplit),
				tree.WithMinSamplesLeaf(rf.minSamplesLeaf),
				tree.WithMaxFeatures(maxFeatures),
				tree.WithRandomState(baseSeed+i),
				tree.WithCategoricalFeatures(rf.categorical),
			)
			errs[i] = t.Fit(subsetRows(X, indices), subsetRows(y, indices))
			trees[i] = t
		}
	})

	for i, err := range errs {
		if err != nil {
			return errors.NewModelError("RandomForestClassifier.Fit",
				fmt.Sprintf("tree %d failed", i), err)
		}
	}

	rf.trees_ = trees
	rf.featureImportances_ = rf.aggregateImportances()
	rf.SetFitted()

	rf.hasOOB_ = false
	if rf.oobScore {
		if err := rf.computeOOBScore(X, y, inBag); err != nil {
			return err
		}
	}

	logger := log.GetLoggerWithName("ensemble")
	args := []any{
		log.TreesKey, rf.numTrees,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.ClassesKey, rf.nClasses_,
		log.FeatureSubsetKey, maxFeatures,
		log.WorkersKey, rf.numWorkers,
	}
	if rf.hasOOB_ {
		args = append(args, log.OOBScoreKey, rf.oobScore_)
	}
	logger.Info("Random forest trained", args...)
	return nil
}

// distinctSorted collects the distinct values of an n x 1 column in
// ascending order.
func distinctSorted(y mat.Matrix, n int) []float64 {
	seen := make(map[float64]struct{}, 8)
	for i := 0; i < n; i++ {
		seen[y.At(i, 0)] = struct{}{}
	}
	values := make([]float64, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Float64s(values)
	return values
}

// subsetRows copies the selected rows of m into a new dense matrix.
func subsetRows(m mat.Matrix, indices []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(indices), c, nil)
	for i, idx := range indices {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(idx, j))
		}
	}
	return out
}

// classColumn returns the forest probability column of a class value, or -1
// when the value is unknown.
func (rf *RandomForestClassifier) classColumn(class float64) int {
	for i, v := range rf.classes_ {
		if v == class {
			return i
		}
	}
	return -1
}

// addVotes accumulates one tree's class distribution into the forest vote
// matrix, mapping the tree's class columns onto the forest's.
func (rf *RandomForestClassifier) addVotes(votes *mat.Dense, rows []int, proba mat.Matrix, treeClasses []float64) {
	for j, class := range treeClasses {
		col := rf.classColumn(class)
		if col < 0 {
			continue
		}
		for i, row := range rows {
			votes.Set(row, col, votes.At(row, col)+proba.At(i, j))
		}
	}
}

// aggregateImportances averages the per-tree importances and renormalizes.
func (rf *RandomForestClassifier) aggregateImportances() []float64 {
	importances := make([]float64, rf.nFeatures_)
	for _, t := range rf.trees_ {
		for j, v := range t.GetFeatureImportances() {
			importances[j] += v
		}
	}
	total := 0.0
	for _, v := range importances {
		total += v
	}
	if total == 0 {
		return importances
	}
	for j := range importances {
		importances[j] /= total
	}
	return importances
}

// computeOOBScore estimates generalization accuracy from out-of-bag votes.
func (rf *RandomForestClassifier) computeOOBScore(X, y mat.Matrix, inBag [][]bool) error {
	r, _ := X.Dims()
	votes := mat.NewDense(r, rf.nClasses_, nil)
	counts := make([]int, r)

	for ti, t := range rf.trees_ {
		var oobRows []int
		for i := 0; i < r; i++ {
			if !inBag[ti][i] {
				oobRows = append(oobRows, i)
			}
		}
		if len(oobRows) == 0 {
			continue
		}

		proba, err := t.PredictProba(subsetRows(X, oobRows))
		if err != nil {
			return errors.NewModelError("RandomForestClassifier.Fit",
				fmt.Sprintf("out-of-bag prediction failed for tree %d", ti), err)
		}
		rf.addVotes(votes, oobRows, proba, t.Classes())
		for _, row := range oobRows {
			counts[row]++
		}
	}

	correct, voted := 0, 0
	for i := 0; i < r; i++ {
		if counts[i] == 0 {
			continue
		}
		voted++
		if rf.classes_[argmaxRow(votes, i)] == y.At(i, 0) {
			correct++
		}
	}
	if voted == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("oob_score",
			"no out-of-bag samples, score unavailable", 0))
		return nil
	}

	rf.oobScore_ = float64(correct) / float64(voted)
	rf.hasOOB_ = true
	return nil
}

// argmaxRow returns the column with the highest value in one row. Ties go
// to the lower column index.
func argmaxRow(m *mat.Dense, row int) int {
	_, c := m.Dims()
	best := 0
	for j := 1; j < c; j++ {
		if m.At(row, j) > m.At(row, best) {
			best = j
		}
	}
	return best
}

// Predict returns an n x 1 column of predicted class values by soft voting.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}

	r, _ := proba.Dims()
	predictions := mat.NewDense(r, 1, nil)
	dense := proba.(*mat.Dense)
	for i := 0; i < r; i++ {
		predictions.Set(i, 0, rf.classes_[argmaxRow(dense, i)])
	}
	return predictions, nil
}

// PredictProba returns the mean of the per-tree class distributions, an
// n x k matrix with columns in ascending class value order. Rows sum to 1.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}
	r, c := X.Dims()
	if c != rf.nFeatures_ {
		return nil, errors.NewDimensionError("RandomForestClassifier.PredictProba", rf.nFeatures_, c, 1)
	}

	rows := make([]int, r)
	for i := range rows {
		rows[i] = i
	}

	votes := mat.NewDense(r, rf.nClasses_, nil)
	for _, t := range rf.trees_ {
		proba, err := t.PredictProba(X)
		if err != nil {
			return nil, err
		}
		rf.addVotes(votes, rows, proba, t.Classes())
	}

	votes.Scale(1/float64(len(rf.trees_)), votes)
	return votes, nil
}

// Score returns the mean accuracy of Predict on the given data.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// OOBScore returns the out-of-bag accuracy estimated during Fit.
func (rf *RandomForestClassifier) OOBScore() (float64, error) {
	if !rf.IsFitted() {
		return 0, errors.NewNotFittedError("RandomForestClassifier", "OOBScore")
	}
	if !rf.hasOOB_ {
		return 0, errors.NewValueError("RandomForestClassifier.OOBScore",
			"out-of-bag score not computed, fit with WithOOBScore(true)")
	}
	return rf.oobScore_, nil
}

// FeatureImportances returns the mean normalized impurity decrease per
// feature across all trees.
func (rf *RandomForestClassifier) FeatureImportances() []float64 {
	if !rf.IsFitted() {
		return nil
	}
	out := make([]float64, len(rf.featureImportances_))
	copy(out, rf.featureImportances_)
	return out
}

// Classes returns the class values in ascending order.
func (rf *RandomForestClassifier) Classes() []float64 {
	out := make([]float64, len(rf.classes_))
	copy(out, rf.classes_)
	return out
}

// NumClasses returns the number of classes seen during Fit.
func (rf *RandomForestClassifier) NumClasses() int {
	return rf.nClasses_
}

// NumFeatures returns the number of features seen during Fit.
func (rf *RandomForestClassifier) NumFeatures() int {
	return rf.nFeatures_
}

// NumTrees returns the configured ensemble size.
func (rf *RandomForestClassifier) NumTrees() int {
	return rf.numTrees
}

// Trees returns the fitted base learners.
func (rf *RandomForestClassifier) Trees() []*tree.DecisionTreeClassifier {
	return rf.trees_
}

// Clone returns an unfitted forest with the same hyperparameters.
func (rf *RandomForestClassifier) Clone() *RandomForestClassifier {
	clone := &RandomForestClassifier{
		numTrees:              rf.numTrees,
		criterion:             rf.criterion,
		maxDepth:              rf.maxDepth,
		minSamplesSplit:       rf.minSamplesSplit,
		minSamplesLeaf:        rf.minSamplesLeaf,
		maxFeatures:           rf.maxFeatures,
		featureSubsetStrategy: rf.featureSubsetStrategy,
		bootstrap:             rf.bootstrap,
		oobScore:              rf.oobScore,
		seed:                  rf.seed,
		numWorkers:            rf.numWorkers,
		categorical:           rf.categorical,
	}
	return clone
}

// GetParams returns the hyperparameters.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":            rf.numTrees,
		"criterion":               rf.criterion,
		"max_depth":               rf.maxDepth,
		"min_samples_split":       rf.minSamplesSplit,
		"min_samples_leaf":        rf.minSamplesLeaf,
		"max_features":            rf.maxFeatures,
		"feature_subset_strategy": rf.featureSubsetStrategy,
		"bootstrap":               rf.bootstrap,
		"oob_score":               rf.oobScore,
		"seed":                    rf.seed,
		"num_workers":             rf.numWorkers,
	}
}

// SetParams updates hyperparameters from a map. Unknown keys and wrongly
// typed values are rejected.
func (rf *RandomForestClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("n_estimators", "must be an int", value)
			}
			rf.numTrees = n
		case "criterion":
			s, ok := value.(string)
			if !ok {
				return errors.NewValidationError("criterion", "must be a string", value)
			}
			rf.criterion = s
		case "max_depth":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("max_depth", "must be an int", value)
			}
			rf.maxDepth = n
		case "min_samples_split":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("min_samples_split", "must be an int", value)
			}
			rf.minSamplesSplit = n
		case "min_samples_leaf":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("min_samples_leaf", "must be an int", value)
			}
			rf.minSamplesLeaf = n
		case "max_features":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("max_features", "must be an int", value)
			}
			rf.maxFeatures = n
		case "feature_subset_strategy":
			s, ok := value.(string)
			if !ok {
				return errors.NewValidationError("feature_subset_strategy", "must be a string", value)
			}
			rf.featureSubsetStrategy = s
		case "bootstrap":
			b, ok := value.(bool)
			if !ok {
				return errors.NewValidationError("bootstrap", "must be a bool", value)
			}
			rf.bootstrap = b
		case "oob_score":
			b, ok := value.(bool)
			if !ok {
				return errors.NewValidationError("oob_score", "must be a bool", value)
			}
			rf.oobScore = b
		case "seed":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("seed", "must be an int", value)
			}
			rf.seed = n
		case "num_workers":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("num_workers", "must be an int", value)
			}
			rf.numWorkers = n
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// String returns a printable representation of the classifier.
func (rf *RandomForestClassifier) String() string {
	if !rf.IsFitted() {
		return fmt.Sprintf("RandomForestClassifier(n_estimators=%d, criterion=%s)",
			rf.numTrees, rf.criterion)
	}
	return fmt.Sprintf("RandomForestClassifier(n_estimators=%d, criterion=%s, n_classes=%d, n_features=%d)",
		rf.numTrees, rf.criterion, rf.nClasses_, rf.nFeatures_)
}

// forestGobModel mirrors the classifier for gob round-trips.
type forestGobModel struct {
	NumTrees              int
	Criterion             string
	MaxDepth              int
	MinSamplesSplit       int
	MinSamplesLeaf        int
	MaxFeatures           int
	FeatureSubsetStrategy string
	Bootstrap             bool
	OOBEnabled            bool
	Seed                  int
	NumWorkers            int
	Categorical           map[int]int

	Trees       []*tree.DecisionTreeClassifier
	Classes     []float64
	NClasses    int
	NFeatures   int
	Importances []float64
	OOBScore    float64
	HasOOB      bool
	Fitted      bool
}

// GobEncode serializes the forest, trees included.
func (rf *RandomForestClassifier) GobEncode() ([]byte, error) {
	state := forestGobModel{
		NumTrees:              rf.numTrees,
		Criterion:             rf.criterion,
		MaxDepth:              rf.maxDepth,
		MinSamplesSplit:       rf.minSamplesSplit,
		MinSamplesLeaf:        rf.minSamplesLeaf,
		MaxFeatures:           rf.maxFeatures,
		FeatureSubsetStrategy: rf.featureSubsetStrategy,
		Bootstrap:             rf.bootstrap,
		OOBEnabled:            rf.oobScore,
		Seed:                  rf.seed,
		NumWorkers:            rf.numWorkers,
		Categorical:           rf.categorical,
		Trees:                 rf.trees_,
		Classes:               rf.classes_,
		NClasses:              rf.nClasses_,
		NFeatures:             rf.nFeatures_,
		Importances:           rf.featureImportances_,
		OOBScore:              rf.oobScore_,
		HasOOB:                rf.hasOOB_,
		Fitted:                rf.IsFitted(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores a forest serialized by GobEncode.
func (rf *RandomForestClassifier) GobDecode(data []byte) error {
	var state forestGobModel
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}

	rf.numTrees = state.NumTrees
	rf.criterion = state.Criterion
	rf.maxDepth = state.MaxDepth
	rf.minSamplesSplit = state.MinSamplesSplit
	rf.minSamplesLeaf = state.MinSamplesLeaf
	rf.maxFeatures = state.MaxFeatures
	rf.featureSubsetStrategy = state.FeatureSubsetStrategy
	rf.bootstrap = state.Bootstrap
	rf.oobScore = state.OOBEnabled
	rf.seed = state.Seed
	rf.numWorkers = state.NumWorkers
	rf.categorical = state.Categorical
	rf.trees_ = state.Trees
	rf.classes_ = state.Classes
	rf.nClasses_ = state.NClasses
	rf.nFeatures_ = state.NFeatures
	rf.featureImportances_ = state.Importances
	rf.oobScore_ = state.OOBScore
	rf.hasOOB_ = state.HasOOB
	if state.Fitted {
		rf.SetFitted()
	} else {
		rf.Reset()
	}
	return nil
}
