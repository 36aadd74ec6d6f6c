package store

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// Cookie is a persisted cookie row.
type Cookie struct {
	Origin    string
	Name      string
	Path      string
	Value     string
	Domain    string
	ExpiresAt int64 // unix ms; 0 for session cookies
	Secure    bool
	HTTPOnly  bool
}

// SaveCookie inserts or replaces a cookie keyed on origin, name and path.
func (db *DB) SaveCookie(c *Cookie) error {
	_, err := db.Exec(`
		INSERT INTO cookies (origin, name, path, value, domain, expires_at, secure, http_only, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(origin, name, path) DO UPDATE SET
			value = excluded.value,
			domain = excluded.domain,
			expires_at = excluded.expires_at,
			secure = excluded.secure,
			http_only = excluded.http_only,
			updated_at = excluded.updated_at`,
		c.Origin, c.Name, c.Path, c.Value, c.Domain, c.ExpiresAt, c.Secure, c.HTTPOnly, time.Now().UnixMilli())
	return err
}

// DeleteCookie removes one cookie.
func (db *DB) DeleteCookie(origin, name, path string) error {
	_, err := db.Exec(`DELETE FROM cookies WHERE origin = ? AND name = ? AND path = ?`, origin, name, path)
	return err
}

// ClearCookies removes every cookie stored for origin.
func (db *DB) ClearCookies(origin string) error {
	_, err := db.Exec(`DELETE FROM cookies WHERE origin = ?`, origin)
	return err
}

// ListCookies returns unexpired cookies, pruning expired rows as a side effect.
func (db *DB) ListCookies() ([]Cookie, error) {
	now := time.Now().UnixMilli()
	if _, err := db.Exec(`DELETE FROM cookies WHERE expires_at > 0 AND expires_at <= ?`, now); err != nil {
		return nil, err
	}
	rows, err := db.Query(`
		SELECT origin, name, path, value, domain, expires_at, secure, http_only
		FROM cookies ORDER BY origin, name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Cookie
	for rows.Next() {
		var c Cookie
		if err := rows.Scan(&c.Origin, &c.Name, &c.Path, &c.Value, &c.Domain, &c.ExpiresAt, &c.Secure, &c.HTTPOnly); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Jar is an http.CookieJar that writes through to the profile database,
// so a restarted client can re-check its session.
type Jar struct {
	mu     sync.Mutex
	inner  *cookiejar.Jar
	db     *DB
	logger *zap.Logger
}

// NewJar builds a jar and replays the cookies stored in db into it.
func NewJar(db *DB, logger *zap.Logger) (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	j := &Jar{inner: inner, db: db, logger: logger}

	stored, err := db.ListCookies()
	if err != nil {
		return nil, err
	}
	for _, c := range stored {
		u, err := url.Parse(c.Origin)
		if err != nil {
			continue
		}
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.ExpiresAt > 0 {
			hc.Expires = time.UnixMilli(c.ExpiresAt)
		}
		inner.SetCookies(u, []*http.Cookie{hc})
	}
	logger.Debug("cookie jar restored", zap.Int("cookies", len(stored)))
	return j, nil
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// SetCookies implements http.CookieJar. Deletions (MaxAge < 0 or a past
// Expires) remove the stored row; everything else is upserted.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)

	origin := Origin(u)
	now := time.Now()
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}
		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
			if err := j.db.DeleteCookie(origin, c.Name, path); err != nil {
				j.logger.Warn("delete cookie", zap.String("name", c.Name), zap.Error(err))
			}
			continue
		}
		row := &Cookie{
			Origin:   origin,
			Name:     c.Name,
			Path:     path,
			Value:    c.Value,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		switch {
		case c.MaxAge > 0:
			row.ExpiresAt = now.Add(time.Duration(c.MaxAge) * time.Second).UnixMilli()
		case !c.Expires.IsZero():
			row.ExpiresAt = c.Expires.UnixMilli()
		}
		if err := j.db.SaveCookie(row); err != nil {
			j.logger.Warn("save cookie", zap.String("name", c.Name), zap.Error(err))
		}
	}
}

// Origin returns scheme://host for u.
func Origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
