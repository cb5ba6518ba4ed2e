package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tupyy/hcam-agent/internal/models"
	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("not found")

// ProfileStore keeps named requested settings in DuckDB. Settings are stored as
// JSON text.
type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, queryListProfiles)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *ProfileStore) Get(ctx context.Context, name string) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, queryGetProfile, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// Save stores or replaces the profile settings.
func (s *ProfileStore) Save(ctx context.Context, p *models.Profile) error {
	if p.Name == "" {
		return errors.New("profile name cannot be empty")
	}
	settings := p.Settings
	if settings == nil {
		settings = camapi.Settings{}
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding profile settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, queryUpsertProfile, p.Name, string(data))
	return err
}

// Delete removes the profile. It returns ErrNotFound if no such profile exists.
func (s *ProfileStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, queryDeleteProfile, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*models.Profile, error) {
	var (
		p    models.Profile
		data string
	)
	if err := row.Scan(&p.Name, &data, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	if err := dec.Decode(&p.Settings); err != nil {
		return nil, fmt.Errorf("decoding settings of profile %q: %w", p.Name, err)
	}
	return &p, nil
}
