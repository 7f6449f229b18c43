// Package roster 实现月度排班的生成算法
package roster

import (
	"time"

	"github.com/helmplan/helmplan/pkg/model"
)

// monthDates 返回某月的全部日期（YYYY-MM-DD，升序）
func monthDates(month string) ([]string, error) {
	first, err := time.Parse(model.MonthLayout, month)
	if err != nil {
		return nil, err
	}

	var dates []string
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(model.DateLayout))
	}
	return dates, nil
}

// workingDaysInMonth 返回某月的工作日数（周一到周五，节假日照常计入）
func workingDaysInMonth(month string) int {
	first, err := time.Parse(model.MonthLayout, month)
	if err != nil {
		return 0
	}

	count := 0
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// weekdayOf 返回日期对应的星期几
func weekdayOf(date string) time.Weekday {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Sunday
	}
	return d.Weekday()
}

// isWeekendDate 检查日期是否为周六或周日
func isWeekendDate(date string) bool {
	wd := weekdayOf(date)
	return wd == time.Saturday || wd == time.Sunday
}

// previousDate 返回前一天的日期
func previousDate(date string) string {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, -1).Format(model.DateLayout)
}

// nextDate 返回后一天的日期
func nextDate(date string) string {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, 1).Format(model.DateLayout)
}

// weekendGroups 把一个月内的周六/周日按周末分组
// 正常情况下周六和紧随的周日构成一组；月初的孤立周日
// 或月末的孤立周六构成单日组
func weekendGroups(dates []string) [][]string {
	var groups [][]string
	for i := 0; i < len(dates); i++ {
		switch weekdayOf(dates[i]) {
		case time.Saturday:
			if i+1 < len(dates) && weekdayOf(dates[i+1]) == time.Sunday {
				groups = append(groups, []string{dates[i], dates[i+1]})
				i++
			} else {
				groups = append(groups, []string{dates[i]})
			}
		case time.Sunday:
			// 只有月初第一天是周日时才会走到这里
			groups = append(groups, []string{dates[i]})
		}
	}
	return groups
}
