// SPDX-License-Identifier: Apache-2.0

package store

const (
	upsertKV = `
		INSERT INTO kv (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value      = excluded.value,
			updated_at = CURRENT_TIMESTAMP;`

	getKV = `
		SELECT value
		FROM kv
		WHERE key = $1;`

	deleteKV = `
		DELETE FROM kv
		WHERE key = $1;`

	keysKV = `
		SELECT key
		FROM kv
		WHERE key LIKE $1 || '%'
		ORDER BY key;`
)
