package knowledge

const (
	initTableQuery = `CREATE TABLE IF NOT EXISTS diseases (
		key text PRIMARY KEY,
		crop text NOT NULL,
		record jsonb NOT NULL
	);`

	upsertRecordQuery = `INSERT INTO diseases (key, crop, record) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET crop = EXCLUDED.crop, record = EXCLUDED.record`
	readRecordQuery   = `SELECT record FROM diseases WHERE key = $1`
	searchByCropQuery = `SELECT record FROM diseases WHERE lower(crop) = lower($1) ORDER BY key`
)
