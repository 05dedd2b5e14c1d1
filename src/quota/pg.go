package quota

import "github.com/go-pg/pg/v10"

// PGStore persists usage counts in the daily_usages table so quotas survive
// restarts and are shared across instances.
type PGStore struct {
	db *pg.DB
}

func NewPGStore(db *pg.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Used(key, day string) (int, error) {
	usage := new(DailyUsage)
	err := s.db.Model(usage).
		Where("key = ?", key).
		Where("day = ?", day).
		Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}

	return usage.Count, nil
}

func (s *PGStore) Increment(key, day string) error {
	_, err := s.db.Exec(
		`INSERT INTO daily_usages (key, day, count) VALUES (?, ?, 1)
		ON CONFLICT (key, day) DO UPDATE SET count = daily_usages.count + 1`,
		key, day,
	)
	return err
}
