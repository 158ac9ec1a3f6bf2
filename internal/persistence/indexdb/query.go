package indexdb

import "plotcraft.ai/internal/plan/model"

// Checkpoints returns the most recent checkpoints of a plan, newest first.
func (s *SQLiteIndex) Checkpoints(planID string, limit int) ([]CheckpointRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT seq,reason,walls,openings,rooms,objects,recorded_at FROM checkpoints WHERE plan_id=? ORDER BY seq DESC LIMIT ?`, planID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CheckpointRow
	for rows.Next() {
		r := CheckpointRow{PlanID: planID}
		var seq int64
		var st model.Stats
		if err := rows.Scan(&seq, &r.Reason, &st.Walls, &st.Openings, &st.Rooms, &st.Objects, &r.RecordedAt); err != nil {
			return nil, err
		}
		r.Seq = uint64(seq)
		r.Stats = st
		out = append(out, r)
	}
	return out, rows.Err()
}

// RejectionCounts groups a plan's rejections by code.
func (s *SQLiteIndex) RejectionCounts(planID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT code, COUNT(*) FROM rejections WHERE plan_id=? GROUP BY code`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, err
		}
		out[code] = n
	}
	return out, rows.Err()
}

// LatestSnapshot returns the path of the newest indexed snapshot of a plan.
func (s *SQLiteIndex) LatestSnapshot(planID string) (string, uint64, error) {
	var path string
	var seq int64
	err := s.db.QueryRow(`SELECT path, seq FROM snapshots WHERE plan_id=? ORDER BY seq DESC LIMIT 1`, planID).Scan(&path, &seq)
	if err != nil {
		return "", 0, err
	}
	return path, uint64(seq), nil
}
