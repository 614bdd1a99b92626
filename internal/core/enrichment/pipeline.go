package enrichment

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// minChunkSize 每個 worker 至少處理的食材數
const minChunkSize = 64

// Result 單一批次的輸出
type Result struct {
	Records []EnrichedRecord `json:"records"`
	Report  GapReport        `json:"report"`
}

// Pipeline 食材補全管線
type Pipeline struct {
	refs    *References
	workers int
}

// NewPipeline 建立管線；workers <= 0 時使用 CPU 數
func NewPipeline(refs *References, workers int) *Pipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pipeline{refs: refs, workers: workers}
}

// References 管線使用的參考字典
func (p *Pipeline) References() *References {
	return p.refs
}

// Run 依名稱排序後補全所有食材並產生缺漏報告。
// 輸入切片不會被修改。
func (p *Pipeline) Run(ingredients []RawIngredient) Result {
	ordered := SortIngredients(ingredients)
	records := make([]EnrichedRecord, len(ordered))

	chunks := partition(len(ordered), p.workers)
	tallies := make([]*gapTally, len(chunks))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			tally := newGapTally()
			for idx := c.start; idx < c.end; idx++ {
				records[idx] = Enrich(ordered[idx], p.refs)
				tally.add(records[idx])
			}
			tallies[i] = tally
			return nil
		})
	}
	// worker 不回傳錯誤，errgroup 只用來限制並行數
	_ = g.Wait()

	merged := newGapTally()
	for _, tally := range tallies {
		merged.merge(tally)
	}

	return Result{Records: records, Report: merged.report()}
}

// SortIngredients 回傳依名稱排序的副本，同名時以 id 排序
func SortIngredients(ingredients []RawIngredient) []RawIngredient {
	ordered := make([]RawIngredient, len(ingredients))
	copy(ordered, ingredients)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

type chunk struct {
	start, end int
}

func partition(n, workers int) []chunk {
	if n == 0 {
		return nil
	}
	size := (n + workers - 1) / workers
	if size < minChunkSize {
		size = minChunkSize
	}
	chunks := make([]chunk, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, chunk{start: start, end: end})
	}
	return chunks
}
