package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/types"
	"github.com/okian/inhouse/pkg/metrics"
)

type participantRow struct {
	ID            string                  `gorm:"primaryKey"`
	Username      string                  `gorm:"not null"`
	RiotID        string                  `gorm:"index"`
	RatingRank    string                  `gorm:"not null"`
	RatingTier    int                     `gorm:"not null"`
	RatingWins    int                     `gorm:"not null"`
	RatingLosses  int                     `gorm:"not null"`
	Preferences   []model.Role            `gorm:"serializer:json"`
	Prowess       [model.NumRoles]float64 `gorm:"serializer:json"`
	Wins          int                     `gorm:"not null"`
	MVPs          int                     `gorm:"column:mvps;not null"`
	Participation int                     `gorm:"not null"`
	GamesPlayed   int                     `gorm:"not null"`
	Toxicity      int                     `gorm:"not null"`
	Active        bool                    `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (participantRow) TableName() string { return "participants" }

type matchRow struct {
	MatchID     string                 `gorm:"primaryKey"`
	GuildID     string                 `gorm:"index;not null"`
	CycleID     string                 `gorm:"index;not null"`
	Winner      string                 `gorm:"not null"`
	Blue        [model.NumRoles]string `gorm:"serializer:json"`
	Red         [model.NumRoles]string `gorm:"serializer:json"`
	MVP         string                 `gorm:"column:mvp"`
	CompletedAt time.Time              `gorm:"index"`
}

func (matchRow) TableName() string { return "matches" }

// matchParticipantRow is one player's line of a match: side, role, result.
type matchParticipantRow struct {
	MatchID       string `gorm:"primaryKey"`
	ParticipantID string `gorm:"primaryKey;index"`
	Team          string `gorm:"not null"`
	Role          string `gorm:"not null"`
	Won           bool
	MVP           bool `gorm:"column:mvp"`
}

func (matchParticipantRow) TableName() string { return "match_participants" }

// SQLDirectory stores participants through GORM.
type SQLDirectory struct {
	db   *gorm.DB
	opts options
}

var _ Directory = (*SQLDirectory)(nil)

// OpenSQLite opens (and by default migrates) a SQLite database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, opts ...Option) (*SQLDirectory, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// Each pooled connection would get its own empty database.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	return NewSQLDirectory(db, opts...)
}

// NewSQLDirectory wraps an open GORM handle.
func NewSQLDirectory(db *gorm.DB, opts ...Option) (*SQLDirectory, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.autoMigrate {
		if err := db.AutoMigrate(&participantRow{}, &matchRow{}, &matchParticipantRow{}); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &SQLDirectory{db: db, opts: o}, nil
}

func toRow(p model.Participant) participantRow {
	return participantRow{
		ID:            p.ID,
		Username:      p.Username,
		RiotID:        p.RiotID,
		RatingRank:    p.Rating.Rank,
		RatingTier:    p.Rating.Tier,
		RatingWins:    p.Rating.Wins,
		RatingLosses:  p.Rating.Losses,
		Preferences:   p.Preferences,
		Prowess:       p.Prowess,
		Wins:          p.Counters.Wins,
		MVPs:          p.Counters.MVPs,
		Participation: p.Counters.Participation,
		GamesPlayed:   p.Counters.GamesPlayed,
		Toxicity:      p.Counters.Toxicity,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
	}
}

func (r participantRow) participant() model.Participant {
	return model.Participant{
		ID:          r.ID,
		Username:    r.Username,
		RiotID:      r.RiotID,
		Rating:      model.Rating{Rank: r.RatingRank, Tier: r.RatingTier, Wins: r.RatingWins, Losses: r.RatingLosses},
		Preferences: r.Preferences,
		Prowess:     r.Prowess,
		Counters: model.Counters{
			Wins:          r.Wins,
			MVPs:          r.MVPs,
			Participation: r.Participation,
			GamesPlayed:   r.GamesPlayed,
			Toxicity:      r.Toxicity,
		},
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

func (r matchRow) record() model.MatchRecord {
	winner, _ := model.ParseTeam(r.Winner)
	return model.MatchRecord{
		MatchID:     r.MatchID,
		GuildID:     r.GuildID,
		CycleID:     r.CycleID,
		Winner:      winner,
		Teams:       model.TeamAssignment{Blue: r.Blue, Red: r.Red},
		MVP:         r.MVP,
		CompletedAt: r.CompletedAt,
	}
}

func (d *SQLDirectory) Get(ctx context.Context, id string) (model.Participant, error) {
	var row participantRow
	err := d.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Participant{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Participant{}, err
	}
	return row.participant(), nil
}

func (d *SQLDirectory) Upsert(ctx context.Context, p model.Participant) (model.Participant, error) {
	if err := validateParticipant(p); err != nil {
		return model.Participant{}, err
	}
	var stored participantRow
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing participantRow
		err := tx.Where("id = ?", p.ID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p.Counters = model.Counters{}
			p.CreatedAt = d.opts.clock()
			stored = toRow(p)
			return tx.Create(&stored).Error
		case err != nil:
			return err
		}
		p.Counters = existing.participant().Counters
		p.CreatedAt = existing.CreatedAt
		stored = toRow(p)
		// Explicit columns leave counters alone and still write zero values.
		return tx.Model(&stored).Select("username", "riot_id", "rating_rank", "rating_tier", "rating_wins",
			"rating_losses", "preferences", "prowess", "active", "updated_at").Updates(&stored).Error
	})
	if err != nil {
		return model.Participant{}, fmt.Errorf("upsert %s: %w", p.ID, err)
	}
	metrics.UpdateParticipants(d.Count(ctx))
	return stored.participant(), nil
}

func (d *SQLDirectory) List(ctx context.Context) ([]model.Participant, error) {
	var rows []participantRow
	if err := d.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Participant, len(rows))
	for i := range rows {
		out[i] = rows[i].participant()
	}
	return out, nil
}

func (d *SQLDirectory) Deactivate(ctx context.Context, id string) error {
	res := d.db.WithContext(ctx).Model(&participantRow{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (d *SQLDirectory) ApplyAwards(ctx context.Context, batch model.AwardBatch) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&matchRow{}).Where("match_id = ?", batch.MatchID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", model.ErrDuplicateRecord, batch.MatchID)
		}

		for _, a := range batch.Awards {
			res := tx.Model(&participantRow{}).Where("id = ?", a.ParticipantID).Updates(map[string]any{
				"wins":          gorm.Expr("wins + ?", a.Delta.Wins),
				"mvps":          gorm.Expr("mvps + ?", a.Delta.MVPs),
				"participation": gorm.Expr("participation + ?", a.Delta.Participation),
				"games_played":  gorm.Expr("games_played + ?", a.Delta.GamesPlayed),
				"toxicity":      gorm.Expr("toxicity + ?", a.Delta.Toxicity),
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrNotFound, a.ParticipantID)
			}
		}

		rec := batch.Record
		row := matchRow{
			MatchID:     batch.MatchID,
			GuildID:     rec.GuildID,
			CycleID:     rec.CycleID,
			Winner:      rec.Winner.String(),
			Blue:        rec.Teams.Blue,
			Red:         rec.Teams.Red,
			MVP:         rec.MVP,
			CompletedAt: rec.CompletedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		var lines []matchParticipantRow
		for _, team := range []model.Team{model.TeamBlue, model.TeamRed} {
			for r, id := range rec.Teams.Side(team) {
				if id == "" {
					continue
				}
				lines = append(lines, matchParticipantRow{
					MatchID:       batch.MatchID,
					ParticipantID: id,
					Team:          team.String(),
					Role:          model.Role(r).String(),
					Won:           team == rec.Winner,
					MVP:           id == rec.MVP,
				})
			}
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

func (d *SQLDirectory) AddToxicity(ctx context.Context, id string, delta int) (model.Participant, error) {
	var row participantRow
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&participantRow{}).Where("id = ?", id).Update("toxicity", gorm.Expr("toxicity + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return tx.Where("id = ?", id).Take(&row).Error
	})
	if err != nil {
		return model.Participant{}, err
	}
	return row.participant(), nil
}

func (d *SQLDirectory) Matches(ctx context.Context, limit int) ([]model.MatchRecord, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	var rows []matchRow
	err := d.db.WithContext(ctx).Order("completed_at DESC").Order("match_id").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return records(rows), nil
}

func (d *SQLDirectory) ParticipantMatches(ctx context.Context, id string, limit int) ([]model.MatchRecord, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	var rows []matchRow
	err := d.db.WithContext(ctx).
		Joins("JOIN match_participants mp ON mp.match_id = matches.match_id").
		Where("mp.participant_id = ?", id).
		Order("matches.completed_at DESC").Order("matches.match_id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return records(rows), nil
}

func records(rows []matchRow) []model.MatchRecord {
	out := make([]model.MatchRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].record()
	}
	return out
}

func (d *SQLDirectory) Standings(ctx context.Context, limit int) ([]types.Standing, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	var rows []participantRow
	err := d.db.WithContext(ctx).
		Order("(participation + wins + mvps - toxicity) DESC").Order("id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]types.Standing, len(rows))
	for i := range rows {
		out[i] = toStanding(rows[i].participant())
	}
	assignRanksWithTies(out)
	return out, nil
}

func (d *SQLDirectory) Count(ctx context.Context) int {
	var n int64
	if err := d.db.WithContext(ctx).Model(&participantRow{}).Count(&n).Error; err != nil {
		metrics.RecordError("repository", "count")
		return 0
	}
	return int(n)
}

// Close closes the underlying connection pool.
func (d *SQLDirectory) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
