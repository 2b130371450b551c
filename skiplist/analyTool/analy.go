package analyTool

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"

	"github.com/Hakuto4838/TowerList.git/skiplist"
)

type StepMap map[skiplist.K]int

// FindStep 查詢 key 並回傳該次查詢走訪的節點數
func FindStep(sl skiplist.Analyable, key skiplist.K) int {
	sl.Get(key)
	return sl.LastSteps()
}

// AnalyzeStep 根據 map 提供的 key 出現機率計算平均搜尋步數，不在表中的 key 略過
func AnalyzeStep(sl skiplist.Analyable, keys map[skiplist.K]float64) (float64, StepMap) {
	if len(keys) == 0 {
		return 0.0, nil
	}

	step := StepMap{}
	var totalExpectedSteps float64
	var totalProbability float64

	missing := 0
	for k, p := range keys {
		if !sl.Contains(k) {
			missing++
			continue
		}
		s := sl.LastSteps()
		step[k] = s
		totalExpectedSteps += float64(s) * p
		totalProbability += p
	}

	if missing > 0 {
		logrus.Debugf("analyze step: %d of %d keys not in skiplist", missing, len(keys))
	}
	if totalProbability > 0 {
		return totalExpectedSteps / totalProbability, step
	}
	return 0.0, step
}

// CountLevel 計算每層的節點數，並以表格輸出到 w（w 為 nil 時不輸出）
func CountLevel(sl skiplist.Analyable, w io.Writer) []int {
	nodes, height := sl.GetMaxStats()
	levelCounts := make([]int, height)
	for i := range levelCounts {
		levelCounts[i] = len(sl.LevelKeys(i))
	}
	if w == nil {
		return levelCounts
	}

	rows := make([][]string, 0, height)
	for i := height - 1; i >= 0; i-- {
		expect := float64(nodes) / math.Pow(2, float64(i))
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", levelCounts[i]),
			fmt.Sprintf("%.1f", expect),
			fmt.Sprintf("%.3f", float64(levelCounts[i])/expect),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Level", "Nodes", "Expected", "Ratio"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
	return levelCounts
}

// CheckStruct 檢查每層是否嚴格遞增，且每層的 key 都出現在下一層
func CheckStruct(sl skiplist.Analyable) bool {
	_, height := sl.GetMaxStats()
	var below []skiplist.K
	for lv := 0; lv < height; lv++ {
		keys := sl.LevelKeys(lv)
		for i := 1; i < len(keys); i++ {
			if keys[i-1] >= keys[i] {
				logrus.Warnf("level %d not ascending at %d: %d >= %d", lv, i, keys[i-1], keys[i])
				return false
			}
		}
		if lv > 0 {
			j := 0
			for _, k := range keys {
				for j < len(below) && below[j] < k {
					j++
				}
				if j == len(below) || below[j] != k {
					logrus.Warnf("key %d on level %d missing from level %d", k, lv, lv-1)
					return false
				}
			}
		}
		below = keys
	}
	if len(sl.LevelKeys(height)) != 0 {
		logrus.Warnf("level %d above height is not empty", height)
		return false
	}
	return true
}

// PrintSkipList 打印 skip list 前 maxNodes 個 key 在各層的分布
func PrintSkipList(sl skiplist.Analyable, maxLevel, maxNodes int, w io.Writer) {
	_, height := sl.GetMaxStats()
	if height == 0 {
		fmt.Fprintln(w, "skip list is empty")
		return
	}
	maxLevel = min(maxLevel, height-1)

	base := sl.LevelKeys(0)
	if len(base) > maxNodes {
		base = base[:maxNodes]
	}
	for i := maxLevel; i >= 0; i-- {
		present := make(map[skiplist.K]struct{})
		for _, k := range sl.LevelKeys(i) {
			present[k] = struct{}{}
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "level %d : ", i)
		for _, k := range base {
			if _, ok := present[k]; ok {
				fmt.Fprintf(&sb, "%3d ->", k)
			} else {
				sb.WriteString("    ->")
			}
		}
		fmt.Fprintln(w, sb.String())
	}
}

func (mp StepMap) sorted() [][2]int {
	out := make([][2]int, 0, len(mp))
	for k, v := range mp {
		out = append(out, [2]int{int(k), v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i][0] < out[j][0]
	})
	return out
}

func (mp StepMap) Print(w io.Writer) {
	out := mp.sorted()
	for _, v := range out {
		fmt.Fprintf(w, "%2d  ", v[0])
	}
	fmt.Fprintln(w)
	for _, v := range out {
		fmt.Fprintf(w, "%2d  ", v[1])
	}
	fmt.Fprintln(w)
}

// PrintToCSV 以 key 遞增順序輸出一列 key 與一列步數
func (mp StepMap) PrintToCSV(writer *csv.Writer) error {
	out := mp.sorted()
	keys := make([]string, len(out)+1)
	steps := make([]string, len(out)+1)
	keys[0], steps[0] = "key", "steps"
	for i, v := range out {
		keys[i+1] = fmt.Sprintf("%d", v[0])
		steps[i+1] = fmt.Sprintf("%d", v[1])
	}
	if err := writer.Write(keys); err != nil {
		return err
	}
	if err := writer.Write(steps); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
