// Package dataset partitions clean records into training and evaluation
// sets with a label-stratified, seeded split.
package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"churnctl/pkg/contracts/domain"
)

// DefaultTrainRatio is the training share of a split.
const DefaultTrainRatio = 0.8

// Splitter produces deterministic stratified train/eval partitions.
// Identical seed and input order always yield the identical partition,
// which downstream statistics fitting depends on.
type Splitter struct {
	ratio float64
	seed  int64
}

// NewSplitter creates a splitter. The ratio is the training share and
// must lie strictly inside (0,1).
func NewSplitter(ratio float64, seed int64) (*Splitter, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, fmt.Errorf("split ratio must be in (0,1), got %v", ratio)
	}
	return &Splitter{ratio: ratio, seed: seed}, nil
}

// Split partitions records, preserving the churned/retained proportion in
// each partition within rounding. Input order is preserved inside each
// partition.
func (s *Splitter) Split(records []domain.CleanRecord) (train, eval []domain.CleanRecord) {
	rng := rand.New(rand.NewSource(s.seed))

	byLabel := map[int][]int{}
	for i, r := range records {
		byLabel[r.Churned] = append(byLabel[r.Churned], i)
	}

	var trainIdx, evalIdx []int
	// Iterate labels in a fixed order so the rng consumption is stable.
	for _, label := range []int{0, 1} {
		indices := byLabel[label]
		if len(indices) == 0 {
			continue
		}
		shuffled := append([]int(nil), indices...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		cut := int(math.Round(s.ratio * float64(len(shuffled))))
		if cut == len(shuffled) && len(shuffled) > 1 {
			cut--
		}
		if cut == 0 && len(shuffled) > 1 {
			cut = 1
		}
		trainIdx = append(trainIdx, shuffled[:cut]...)
		evalIdx = append(evalIdx, shuffled[cut:]...)
	}

	sort.Ints(trainIdx)
	sort.Ints(evalIdx)

	train = make([]domain.CleanRecord, 0, len(trainIdx))
	for _, i := range trainIdx {
		train = append(train, records[i])
	}
	eval = make([]domain.CleanRecord, 0, len(evalIdx))
	for _, i := range evalIdx {
		eval = append(eval, records[i])
	}
	return train, eval
}

// ChurnRate returns the churned share of a record set.
func ChurnRate(records []domain.CleanRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	churned := 0
	for _, r := range records {
		churned += r.Churned
	}
	return float64(churned) / float64(len(records))
}
