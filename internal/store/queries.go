package store

// Profile queries
const (
	queryListProfiles = `
		SELECT name, settings, created_at, updated_at
		FROM profiles ORDER BY name`

	queryGetProfile = `
		SELECT name, settings, created_at, updated_at
		FROM profiles WHERE name = ?`

	queryUpsertProfile = `
		INSERT INTO profiles (name, settings, updated_at)
		VALUES (?, ?, now())
		ON CONFLICT (name) DO UPDATE SET
			settings = EXCLUDED.settings,
			updated_at = now()`

	queryDeleteProfile = `DELETE FROM profiles WHERE name = ?`
)
