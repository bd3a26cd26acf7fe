package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SplitInfo describes a candidate split of a node.
type SplitInfo struct {
	Feature     int
	Threshold   float64 // Midpoint threshold for numerical splits
	Categories  []int   // Category values routed left for categorical splits
	Categorical bool
	Gain        float64 // Impurity decrease relative to the node
	LeftCount   int
	RightCount  int
}

// splitter searches for the best split of a set of samples. yIdx holds the
// class index of every training sample; counts are tallied against nClasses.
type splitter struct {
	X              mat.Matrix
	yIdx           []int
	nClasses       int
	criterion      string
	minSamplesLeaf int

	// categorical maps a feature index to its category count. Features
	// absent from the map split on thresholds.
	categorical map[int]int
}

// impurity computes the node impurity for the configured criterion.
func (s *splitter) impurity(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	if s.criterion == CriterionEntropy {
		entropy := 0.0
		for _, c := range counts {
			if c == 0 {
				continue
			}
			p := float64(c) / float64(total)
			entropy -= p * math.Log2(p)
		}
		return entropy
	}

	gini := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		gini -= p * p
	}
	return gini
}

// classCounts tallies the class indices of the given samples.
func (s *splitter) classCounts(indices []int) []int {
	counts := make([]int, s.nClasses)
	for _, idx := range indices {
		counts[s.yIdx[idx]]++
	}
	return counts
}

// findBestSplit searches the candidate features for the split with the
// highest impurity decrease.
func (s *splitter) findBestSplit(indices []int, features []int) SplitInfo {
	bestSplit := SplitInfo{Gain: -math.MaxFloat64}

	for _, j := range features {
		var split SplitInfo
		if _, ok := s.categorical[j]; ok {
			split = s.findBestCategoricalSplit(indices, j)
		} else {
			split = s.findBestSplitForFeature(indices, j)
		}

		if split.Gain > bestSplit.Gain {
			bestSplit = split
		}
	}

	return bestSplit
}

// findBestSplitForFeature scans the sorted values of one feature for the
// best midpoint threshold.
func (s *splitter) findBestSplitForFeature(indices []int, feature int) SplitInfo {
	values := make([]struct {
		value float64
		idx   int
	}, len(indices))

	for i, idx := range indices {
		values[i] = struct {
			value float64
			idx   int
		}{
			value: s.X.At(idx, feature),
			idx:   idx,
		}
	}

	sort.Slice(values, func(i, j int) bool {
		return values[i].value < values[j].value
	})

	totalCounts := s.classCounts(indices)
	total := len(indices)
	parentImpurity := s.impurity(totalCounts, total)

	bestSplit := SplitInfo{
		Feature: feature,
		Gain:    -math.MaxFloat64,
	}

	leftCounts := make([]int, s.nClasses)
	rightCounts := make([]int, s.nClasses)
	copy(rightCounts, totalCounts)
	leftCount := 0

	for i := 0; i < len(values)-1; i++ {
		cls := s.yIdx[values[i].idx]
		leftCounts[cls]++
		rightCounts[cls]--
		leftCount++

		// Skip if same value
		if values[i].value == values[i+1].value {
			continue
		}

		rightCount := total - leftCount
		if leftCount < s.minSamplesLeaf || rightCount < s.minSamplesLeaf {
			continue
		}

		gain := parentImpurity -
			float64(leftCount)/float64(total)*s.impurity(leftCounts, leftCount) -
			float64(rightCount)/float64(total)*s.impurity(rightCounts, rightCount)

		if gain > bestSplit.Gain {
			bestSplit.Gain = gain
			bestSplit.Threshold = (values[i].value + values[i+1].value) / 2
			bestSplit.LeftCount = leftCount
			bestSplit.RightCount = rightCount
		}
	}

	return bestSplit
}

// categoryInfo stores the per-category class tally of one feature.
type categoryInfo struct {
	category    int
	count       int
	classCounts []int
}

// findBestCategoricalSplit orders the categories of one feature by mean
// class index and scans the prefix splits of that ordering.
func (s *splitter) findBestCategoricalSplit(indices []int, feature int) SplitInfo {
	categoryStats := make(map[int]*categoryInfo)

	for _, idx := range indices {
		category := int(s.X.At(idx, feature))
		stats, exists := categoryStats[category]
		if !exists {
			stats = &categoryInfo{
				category:    category,
				classCounts: make([]int, s.nClasses),
			}
			categoryStats[category] = stats
		}
		stats.count++
		stats.classCounts[s.yIdx[idx]]++
	}

	categories := make([]*categoryInfo, 0, len(categoryStats))
	for _, info := range categoryStats {
		categories = append(categories, info)
	}

	sort.Slice(categories, func(i, j int) bool {
		scoreI := meanClassIndex(categories[i])
		scoreJ := meanClassIndex(categories[j])
		if scoreI == scoreJ {
			return categories[i].category < categories[j].category
		}
		return scoreI < scoreJ
	})

	totalCounts := s.classCounts(indices)
	total := len(indices)
	parentImpurity := s.impurity(totalCounts, total)

	bestSplit := SplitInfo{
		Feature:     feature,
		Categorical: true,
		Gain:        -math.MaxFloat64,
	}

	leftCounts := make([]int, s.nClasses)
	rightCounts := make([]int, s.nClasses)
	copy(rightCounts, totalCounts)
	leftCount := 0

	for k := 0; k < len(categories)-1; k++ {
		for cls, c := range categories[k].classCounts {
			leftCounts[cls] += c
			rightCounts[cls] -= c
		}
		leftCount += categories[k].count

		rightCount := total - leftCount
		if leftCount < s.minSamplesLeaf || rightCount < s.minSamplesLeaf {
			continue
		}

		gain := parentImpurity -
			float64(leftCount)/float64(total)*s.impurity(leftCounts, leftCount) -
			float64(rightCount)/float64(total)*s.impurity(rightCounts, rightCount)

		if gain > bestSplit.Gain {
			bestSplit.Gain = gain
			bestSplit.LeftCount = leftCount
			bestSplit.RightCount = rightCount

			left := make([]int, k+1)
			for i := 0; i <= k; i++ {
				left[i] = categories[i].category
			}
			bestSplit.Categories = left
		}
	}

	return bestSplit
}

// meanClassIndex is the ordering score of a category. Sorting categories by
// it reduces the subset search to a prefix scan.
func meanClassIndex(info *categoryInfo) float64 {
	if info.count == 0 {
		return 0
	}
	sum := 0.0
	for cls, c := range info.classCounts {
		sum += float64(cls) * float64(c)
	}
	return sum / float64(info.count)
}

// splitIndices partitions samples by a split decision.
func (s *splitter) splitIndices(indices []int, split SplitInfo) ([]int, []int) {
	var leftIndices, rightIndices []int

	if split.Categorical {
		leftCatMap := make(map[int]bool, len(split.Categories))
		for _, cat := range split.Categories {
			leftCatMap[cat] = true
		}
		for _, idx := range indices {
			category := int(s.X.At(idx, split.Feature))
			if leftCatMap[category] {
				leftIndices = append(leftIndices, idx)
			} else {
				rightIndices = append(rightIndices, idx)
			}
		}
		return leftIndices, rightIndices
	}

	for _, idx := range indices {
		value := s.X.At(idx, split.Feature)
		if value <= split.Threshold {
			leftIndices = append(leftIndices, idx)
		} else {
			rightIndices = append(rightIndices, idx)
		}
	}

	return leftIndices, rightIndices
}
