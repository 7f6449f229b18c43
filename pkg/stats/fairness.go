// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/helmplan/helmplan/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 目标工时完成度的基尼系数 (0=完全公平, 1=完全不公平)
	FulfillmentGini float64 `json:"fulfillment_gini"`
	// 周末班分配的基尼系数
	WeekendGini float64 `json:"weekend_gini"`

	AvgFulfillment float64 `json:"avg_fulfillment"` // 平均完成度 (%)
	MaxFulfillment float64 `json:"max_fulfillment"`
	MinFulfillment float64 `json:"min_fulfillment"`

	EmployeeStats []EmployeeStat `json:"employee_stats"`

	// 综合公平性评分 (0-100)
	OverallScore float64 `json:"overall_score"`
}

// EmployeeStat 员工统计
type EmployeeStat struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Hours        float64 `json:"hours"`
	Target       float64 `json:"target"`
	Fulfillment  float64 `json:"fulfillment"` // 完成度 (%)
	Weekends     int     `json:"weekends"`
	Deviation    float64 `json:"deviation"` // 与平均完成度的偏差（百分点）
}

// FairnessAnalyzer 公平性分析器
// 以目标工时的完成度为基准，工作量不同的员工之间也可比较
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班公平性
func (f *FairnessAnalyzer) Analyze(schedule *model.Schedule, employees []*model.Employee) *FairnessMetrics {
	if schedule == nil || len(employees) == 0 {
		return &FairnessMetrics{OverallScore: 100}
	}

	stats := make([]EmployeeStat, 0, len(employees))
	fulfillments := make([]float64, 0, len(employees))
	weekends := make([]float64, 0, len(employees))

	for _, emp := range employees {
		hours := schedule.EmployeeHours[emp.ID]
		target := schedule.TargetHours[emp.ID]
		fulfillment := 0.0
		if target > 0 {
			fulfillment = hours / target * 100
		}

		stats = append(stats, EmployeeStat{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			Hours:        hours,
			Target:       target,
			Fulfillment:  fulfillment,
			Weekends:     schedule.EmployeeWeekendShifts[emp.ID],
		})
		fulfillments = append(fulfillments, fulfillment)
		weekends = append(weekends, float64(schedule.EmployeeWeekendShifts[emp.ID]))
	}

	avg := mean(fulfillments)
	for i := range stats {
		stats[i].Deviation = stats[i].Fulfillment - avg
	}

	max, min := valueRange(fulfillments)
	fulfillmentGini := gini(fulfillments)
	weekendGini := gini(weekends)

	return &FairnessMetrics{
		FulfillmentGini: fulfillmentGini,
		WeekendGini:     weekendGini,
		AvgFulfillment:  avg,
		MaxFulfillment:  max,
		MinFulfillment:  min,
		EmployeeStats:   stats,
		OverallScore:    overallScore(fulfillmentGini, weekendGini),
	}
}

// overallScore 把两个基尼系数合成为 0-100 的评分
// 完成度公平性权重更高
func overallScore(fulfillmentGini, weekendGini float64) float64 {
	score := 100 - (fulfillmentGini*70+weekendGini*30)*100
	if score < 0 {
		return 0
	}
	return score
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	weighted := 0.0
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}

	return (2*weighted)/(float64(n)*sum) - float64(n+1)/float64(n)
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// valueRange 返回最大值和最小值
func valueRange(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max := values[0]
	min := values[0]
	for _, v := range values[1:] {
		max = math.Max(max, v)
		min = math.Min(min, v)
	}
	return max, min
}
