package model

import (
	"time"
)

// Analytics is the admin dashboard snapshot, assembled in one batched
// read and cached briefly.
type Analytics struct {
	Overview    AnalyticsOverview         `json:"overview"`
	Difficulty  map[ProblemDifficulty]int `json:"difficulty"`
	Recent      AnalyticsRecent           `json:"recent"`
	Trends      AnalyticsTrends           `json:"trends"`
	PopularTags []TagCount                `json:"popular_tags"`
}

type AnalyticsOverview struct {
	TotalProblems  int `json:"total_problems"`
	TotalUsers     int `json:"total_users"`
	TotalTestCases int `json:"total_test_cases"`
	WeeklyGrowth   int `json:"weekly_growth"`
	MonthlyGrowth  int `json:"monthly_growth"`
}

type AnalyticsRecent struct {
	Problems []RecentProblem `json:"problems"`
	Users    []RecentUser    `json:"users"`
}

type AnalyticsTrends struct {
	ProblemsThisWeek  int `json:"problems_this_week"`
	ProblemsThisMonth int `json:"problems_this_month"`
}

type RecentProblem struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Difficulty ProblemDifficulty `json:"difficulty"`
	CreatedAt  time.Time         `json:"created_at"`
}

type RecentUser struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
