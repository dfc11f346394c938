package indexdb

import (
	"context"
	"database/sql"
)

func (s *SQLiteIndex) Sessions(ctx context.Context) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, seed, started_at, COALESCE(ended_at,''), COALESCE(outcome,''), COALESCE(reason,''), days, ticks FROM sessions ORDER BY started_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var ticks int64
		if err := rows.Scan(&r.ID, &r.Seed, &r.StartedAt, &r.EndedAt, &r.Outcome, &r.Reason, &r.Days, &ticks); err != nil {
			return nil, err
		}
		r.Ticks = uint64(ticks)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) Days(ctx context.Context, sessionID string) ([]DayRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, day, started_tick, world_exp, holder FROM days WHERE session_id=? ORDER BY day`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DayRow
	for rows.Next() {
		var r DayRow
		var tick int64
		if err := rows.Scan(&r.SessionID, &r.Day, &tick, &r.WorldExp, &r.Holder); err != nil {
			return nil, err
		}
		r.StartedTick = uint64(tick)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) Events(ctx context.Context, sessionID string) ([]EventRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, tick, name, success, detail FROM events WHERE session_id=? ORDER BY tick`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EventRow
	for rows.Next() {
		var r EventRow
		var tick int64
		var success sql.NullBool
		if err := rows.Scan(&r.SessionID, &tick, &r.Name, &success, &r.Detail); err != nil {
			return nil, err
		}
		r.Tick = uint64(tick)
		r.Success = success.Valid && success.Bool
		out = append(out, r)
	}
	return out, rows.Err()
}
