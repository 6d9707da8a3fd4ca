package repository

import (
	"context"
	"database/sql"

	"github.com/floodwatch/flood-alert/internal/model"
)

// StatsRepo answers the aggregate queries behind the admin dashboard and the
// per-resource stats endpoints.  Counters are grouped in single GROUP BY
// statements rather than one COUNT query per bucket.
type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// DayCount is one bucket of the 7-day report trend.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// UserStats summarizes the user base including the safety split.
type UserStats struct {
	Total    int64 `json:"total"`
	Admins   int64 `json:"admins"`
	Regular  int64 `json:"regular"`
	Safe     int64 `json:"safe"`
	Unsafe   int64 `json:"unsafe"`
	NewToday int64 `json:"newToday"`
}

// ReportStats summarizes flood reports by status and severity.
type ReportStats struct {
	Total      int64            `json:"total"`
	Verified   int64            `json:"verified"`
	Pending    int64            `json:"pending"`
	BySeverity map[string]int64 `json:"bySeverity"`
	Today      int64            `json:"today"`
	LastWeek   int64            `json:"lastWeek"`
	ByDay      []DayCount       `json:"byDay"`
}

// SOSStats summarizes SOS requests by lifecycle state and type.
type SOSStats struct {
	Total     int64            `json:"total"`
	Pending   int64            `json:"pending"`
	Accepted  int64            `json:"accepted"`
	Completed int64            `json:"completed"`
	ByType    map[string]int64 `json:"byType"`
	Today     int64            `json:"today"`
	LastWeek  int64            `json:"lastWeek"`
}

// ShelterStats summarizes shelter capacity across the network.
type ShelterStats struct {
	Total          int64 `json:"total"`
	Active         int64 `json:"active"`
	TotalCapacity  int64 `json:"totalCapacity"`
	TotalOccupancy int64 `json:"totalOccupancy"`
	AvailableSpace int64 `json:"availableSpace"`
}

// DashboardStats is the combined admin dashboard payload.
type DashboardStats struct {
	Users    UserStats    `json:"users"`
	Reports  ReportStats  `json:"reports"`
	SOS      SOSStats     `json:"sosRequests"`
	Shelters ShelterStats `json:"shelters"`
}

// Users aggregates user counters.
func (r *StatsRepo) Users(ctx context.Context) (UserStats, error) {
	var s UserStats
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(role=?),0),
               COALESCE(SUM(role=?),0),
               COALESCE(SUM(is_safe=1),0),
               COALESCE(SUM(is_safe=0),0),
               COALESCE(SUM(created_at >= UTC_DATE()),0)
        FROM users`, model.RoleAdmin, model.RoleUser).
		Scan(&s.Total, &s.Admins, &s.Regular, &s.Safe, &s.Unsafe, &s.NewToday)
	return s, err
}

// Reports aggregates report counters plus the 7-day by-day trend.
func (r *StatsRepo) Reports(ctx context.Context) (ReportStats, error) {
	var s ReportStats
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(status=?),0),
               COALESCE(SUM(status=?),0),
               COALESCE(SUM(created_at >= UTC_DATE()),0),
               COALESCE(SUM(created_at >= UTC_DATE() - INTERVAL 7 DAY),0)
        FROM flood_reports`, model.ReportVerified, model.ReportPending).
		Scan(&s.Total, &s.Verified, &s.Pending, &s.Today, &s.LastWeek)
	if err != nil {
		return s, err
	}

	s.BySeverity = map[string]int64{
		model.WaterLow: 0, model.WaterMedium: 0, model.WaterHigh: 0, model.WaterSevere: 0,
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT water_level, COUNT(*) FROM flood_reports GROUP BY water_level")
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var level string
		var n int64
		if err := rows.Scan(&level, &n); err != nil {
			return s, err
		}
		s.BySeverity[level] = n
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	dayRows, err := r.db.QueryContext(ctx, `
        SELECT DATE_FORMAT(created_at, '%Y-%m-%d') d, COUNT(*)
        FROM flood_reports
        WHERE created_at >= UTC_DATE() - INTERVAL 7 DAY
        GROUP BY d ORDER BY d ASC`)
	if err != nil {
		return s, err
	}
	defer dayRows.Close()
	s.ByDay = []DayCount{}
	for dayRows.Next() {
		var dc DayCount
		if err := dayRows.Scan(&dc.Date, &dc.Count); err != nil {
			return s, err
		}
		s.ByDay = append(s.ByDay, dc)
	}
	return s, dayRows.Err()
}

// SOS aggregates SOS request counters.
func (r *StatsRepo) SOS(ctx context.Context) (SOSStats, error) {
	var s SOSStats
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(status=?),0),
               COALESCE(SUM(status=?),0),
               COALESCE(SUM(status=?),0),
               COALESCE(SUM(created_at >= UTC_DATE()),0),
               COALESCE(SUM(created_at >= UTC_DATE() - INTERVAL 7 DAY),0)
        FROM sos_requests`, model.SOSPending, model.SOSAccepted, model.SOSCompleted).
		Scan(&s.Total, &s.Pending, &s.Accepted, &s.Completed, &s.Today, &s.LastWeek)
	if err != nil {
		return s, err
	}
	s.ByType = map[string]int64{
		model.SOSRescue: 0, model.SOSFood: 0, model.SOSMedicine: 0, model.SOSEvacuation: 0,
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT type, COUNT(*) FROM sos_requests GROUP BY type")
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return s, err
		}
		s.ByType[typ] = n
	}
	return s, rows.Err()
}

// Shelters aggregates capacity across all shelters.
func (r *StatsRepo) Shelters(ctx context.Context) (ShelterStats, error) {
	var s ShelterStats
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(is_active=1),0),
               COALESCE(SUM(capacity),0),
               COALESCE(SUM(current_occupancy),0)
        FROM shelters`).
		Scan(&s.Total, &s.Active, &s.TotalCapacity, &s.TotalOccupancy)
	if err != nil {
		return s, err
	}
	s.AvailableSpace = s.TotalCapacity - s.TotalOccupancy
	return s, nil
}

// Dashboard combines all aggregates into the admin dashboard payload.
func (r *StatsRepo) Dashboard(ctx context.Context) (DashboardStats, error) {
	var d DashboardStats
	var err error
	if d.Users, err = r.Users(ctx); err != nil {
		return d, err
	}
	if d.Reports, err = r.Reports(ctx); err != nil {
		return d, err
	}
	if d.SOS, err = r.SOS(ctx); err != nil {
		return d, err
	}
	if d.Shelters, err = r.Shelters(ctx); err != nil {
		return d, err
	}
	return d, nil
}
