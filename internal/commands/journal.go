package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hay-kot/stager/internal/core/config"
	"github.com/hay-kot/stager/internal/data/db"
	"github.com/hay-kot/stager/internal/data/stores"
	"github.com/hay-kot/stager/internal/labeler"
)

// openJournal opens the decision journal in the data directory. A corrupt
// database is moved aside and a fresh one created in its place.
func openJournal(cfg *config.Config) (*db.DB, *stores.JournalStore, error) {
	path := cfg.DatabaseFile()

	database, err := db.Open(path, db.DefaultOpenOptions())
	if err != nil && stores.IsCorruptionError(err) {
		backup, rerr := stores.RecoverFromCorruption(path)
		if rerr != nil {
			return nil, nil, fmt.Errorf("recover journal: %w", rerr)
		}
		log.Warn().Str("backup", backup).Msg("journal database was corrupt, moved aside")
		database, err = db.Open(path, db.DefaultOpenOptions())
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	return database, stores.NewJournalStore(database), nil
}

// sessionOptions builds labeler options from cfg. When the journal is enabled
// it is opened and the returned closer releases it; a journal that cannot be
// opened is logged and left out so labeling still works.
func sessionOptions(ctx context.Context, cfg *config.Config) (labeler.Options, func()) {
	opts := labeler.Options{
		Columns:      cfg.Columns,
		StrictLabels: cfg.StrictLabels,
		Lock:         cfg.Lock,
		MaxEntries:   cfg.Journal.MaxEntries,
	}

	if !cfg.Journal.Enabled {
		return opts, func() {}
	}

	database, store, err := openJournal(cfg)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("journal disabled for this run")
		return opts, func() {}
	}

	opts.Journal = store
	return opts, func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close journal")
		}
	}
}
