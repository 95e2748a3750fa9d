package conditions

import "github.com/flowbuilder/branchkeeper/internal/types"

// FilterResult holds the records whose verdict was true, in input order,
// and their positions in the input.
type FilterResult struct {
	Records []types.Record `json:"records"`
	Indexes []int          `json:"indexes"`
}

// Filter keeps the records that satisfy config, as the editor's Filter node does.
func Filter(config types.ConditionsConfig, records []types.Record) (FilterResult, error) {
	compiled, err := Compile(config)
	if err != nil {
		return FilterResult{}, err
	}
	return compiled.Filter(records), nil
}

// Filter keeps the records whose verdict is true.
func (c *CompiledConfig) Filter(records []types.Record) FilterResult {
	out := FilterResult{
		Records: []types.Record{},
		Indexes: []int{},
	}
	for i, record := range records {
		if c.Evaluate(record).Verdict {
			out.Records = append(out.Records, record)
			out.Indexes = append(out.Indexes, i)
		}
	}
	return out
}
