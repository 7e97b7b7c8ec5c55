package score

import (
	"sort"

	"zhcheck/pkg/contract"
)

// Stats: 理解度统计。仅 known/excluded/fallback 词元计入。
type Stats struct {
	Total         int
	Unique        int
	Known         int
	ProperNouns   int
	Comprehension float64
	Applicable    bool
}

// Score 计算统计量；Total 为 0 时 Applicable=false，不做除法。
func Score(toks []contract.Token) Stats {
	var st Stats
	seen := make(map[string]struct{})
	for _, t := range toks {
		if t.Class == contract.ClassProperNoun {
			st.ProperNouns++
			continue
		}
		if !t.Class.Countable() {
			continue
		}
		st.Total++
		if t.Class == contract.ClassKnown {
			st.Known++
		}
		seen[t.Text] = struct{}{}
	}
	st.Unique = len(seen)
	if st.Total > 0 {
		st.Applicable = true
		st.Comprehension = float64(st.Known) / float64(st.Total)
	}
	return st
}

// Aggregate 统计生词频次：按次数降序，次数相同按首次出现位置升序。
func Aggregate(toks []contract.Token) []contract.UnknownWord {
	idx := make(map[string]int)
	var out []contract.UnknownWord
	for _, t := range toks {
		if !t.Class.Unknown() {
			continue
		}
		if i, ok := idx[t.Text]; ok {
			out[i].Count++
			continue
		}
		idx[t.Text] = len(out)
		out = append(out, contract.UnknownWord{Word: t.Text, Count: 1, First: t.Start})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].First < out[j].First
	})
	return out
}

// band: 理解度百分比上界（不含）与对应档位。
type band struct {
	below float64
	mark  string
	label string
}

var bands = []band{
	{82, "⛔", "Too Difficult"},
	{87, "🔴", "Very Challenging"},
	{89, "🟡", "Challenging"},
	{92, "🟢", "Optimal (i+1)"},
	{95, "🔵", "Comfortable"},
}

// Assess 将理解度百分比映射到难度档位；不适用时返回 N/A。
func Assess(pct float64, applicable bool) contract.Assessment {
	if !applicable {
		return contract.Assessment{Label: "N/A"}
	}
	for _, b := range bands {
		if pct < b.below {
			return contract.Assessment{Mark: b.mark, Label: b.label}
		}
	}
	return contract.Assessment{Mark: "⚪", Label: "Too Easy"}
}

// Report 汇总为单文件报告（未填充拼音与释义）。
func Report(id contract.FileID, toks []contract.Token) contract.Report {
	st := Score(toks)
	rep := contract.Report{
		FileID:        id,
		Total:         st.Total,
		Unique:        st.Unique,
		Known:         st.Known,
		ProperNouns:   st.ProperNouns,
		Comprehension: st.Comprehension,
		Applicable:    st.Applicable,
		Unknown:       Aggregate(toks),
	}
	rep.Assessment = Assess(rep.Percent(), rep.Applicable)
	rep.Shown = len(rep.Unknown)
	return rep
}
