package roster

import "github.com/helmplan/helmplan/pkg/model"

// TargetHours 计算员工的月度目标工时
// 公式：当月工作日数（周一到周五，节假日照常计入）x 早班时长 x 工作量百分比
func TargetHours(emp *model.Employee, month string, settings *model.Settings) float64 {
	days := workingDaysInMonth(month)
	return float64(days) * settings.Shifts.Early.DurationHours() * emp.Workload / 100.0
}
