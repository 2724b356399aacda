package resample

import "math/rand/v2"

// assignFolds returns, for every row, its 0-based fold index. At
// LevelSubject every row sharing a pid value is assigned the same fold;
// at LevelEntry rows are assigned independently. Fold sizes are balanced
// to within one (subjects/rows are shuffled first, then dealt round-robin).
func assignFolds(pid []int, level Level, k int, rng *rand.Rand) []int {
	n := len(pid)
	foldOf := make([]int, n)

	if level == LevelEntry {
		order := rng.Perm(n)
		for deal, row := range order {
			foldOf[row] = deal % k
		}
		return foldOf
	}

	ids := distinctOrdered(pid)
	perm := rng.Perm(len(ids))
	foldOfID := make(map[int]int, len(ids))
	for deal, idx := range perm {
		foldOfID[ids[idx]] = deal % k
	}
	for row, id := range pid {
		foldOf[row] = foldOfID[id]
	}
	return foldOf
}

// foldWeights builds the train (1 outside fold k, 0 inside) and test (the
// complement) weight vectors spec.md §4.5 describes.
func foldWeights(foldOf []int, k int) (train, test []float64) {
	n := len(foldOf)
	train = make([]float64, n)
	test = make([]float64, n)
	for row, f := range foldOf {
		if f == k {
			test[row] = 1
		} else {
			train[row] = 1
		}
	}
	return train, test
}

// bootstrapWeights draws a bootstrap sample and returns the per-row
// multiplicity weight vector. At LevelSubject whole pid groups are drawn
// together; at LevelEntry rows are drawn independently.
func bootstrapWeights(n int, pid []int, level Level, rng *rand.Rand) []float64 {
	w := make([]float64, n)
	if level == LevelEntry {
		for i := 0; i < n; i++ {
			w[rng.IntN(n)]++
		}
		return w
	}

	ids := distinctOrdered(pid)
	rowsByID := make(map[int][]int, len(ids))
	for row, id := range pid {
		rowsByID[id] = append(rowsByID[id], row)
	}
	for i := 0; i < len(ids); i++ {
		drawn := ids[rng.IntN(len(ids))]
		for _, row := range rowsByID[drawn] {
			w[row]++
		}
	}
	return w
}
