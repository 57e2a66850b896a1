package database

import (
	"context"
)

// GetSetting returns the value stored for key, or def when absent.
// Settings are read from an in-memory cache that is populated from the
// store on first access and authoritative afterwards.
func (d *Database) GetSetting(ctx context.Context, key, def string) (string, error) {
	d.settingsMu.Lock()
	defer d.settingsMu.Unlock()

	if err := d.loadSettingsLocked(ctx); err != nil {
		return "", err
	}

	if value, ok := d.settings[key]; ok {
		return value, nil
	}
	return def, nil
}

// SetSetting writes a key/value pair to the cache and the store together.
func (d *Database) SetSetting(ctx context.Context, key, value string) error {
	done := observeQuery("set_setting")

	d.settingsMu.Lock()
	defer d.settingsMu.Unlock()

	if err := d.loadSettingsLocked(ctx); err != nil {
		done(err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, "REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err == nil {
		d.settings[key] = value
	}
	done(err)
	return err
}

// RemoveSetting deletes a key from the cache and the store together.
// Removing an absent key is a no-op.
func (d *Database) RemoveSetting(ctx context.Context, key string) error {
	done := observeQuery("remove_setting")

	d.settingsMu.Lock()
	defer d.settingsMu.Unlock()

	if err := d.loadSettingsLocked(ctx); err != nil {
		done(err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	if err == nil {
		delete(d.settings, key)
	}
	done(err)
	return err
}

// AllSettings returns a copy of every stored key/value pair.
func (d *Database) AllSettings(ctx context.Context) (map[string]string, error) {
	d.settingsMu.Lock()
	defer d.settingsMu.Unlock()

	if err := d.loadSettingsLocked(ctx); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(d.settings))
	for k, v := range d.settings {
		out[k] = v
	}
	return out, nil
}

// loadSettingsLocked populates the settings cache on first access.
// Caller must hold settingsMu. The cache is never invalidated afterwards,
// so external writes to the backing store are not observed.
func (d *Database) loadSettingsLocked(ctx context.Context) error {
	if d.settingsLoaded {
		return nil
	}

	done := observeQuery("load_settings")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		done(err)
		return err
	}
	defer closeRows(rows)

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			done(err)
			return err
		}
		d.settings[k] = v
	}
	if err := rows.Err(); err != nil {
		done(err)
		return err
	}

	d.settingsLoaded = true
	done(nil)
	return nil
}
