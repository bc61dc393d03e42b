package load

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/classifier"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/extractor"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/normalizer"
)

const (
	// firstSyntheticID is where synthesized account and profile ids start,
	// above any hand-seeded rows.
	firstSyntheticID = 1000

	// subscriptionPeriod is the flat validity window applied to every sale.
	subscriptionPeriod = 30 * 24 * time.Hour

	clientKeyDigits = 10
)

// Loader turns extracted transactions into committed rows. Each service tag
// seen for the first time gets an inventory account and a sales profile;
// the mapping lives for the whole migration run so later files reuse it.
type Loader struct {
	repo     *Repository
	logger   *slog.Logger
	profiles map[classifier.Service]int64
	nextID   int64
}

// NewLoader creates a loader with an empty service map.
func NewLoader(repo *Repository, logger *slog.Logger) *Loader {
	return &Loader{
		repo:     repo,
		logger:   logger,
		profiles: make(map[classifier.Service]int64),
		nextID:   firstSyntheticID,
	}
}

// ClientKey derives a stable 10-digit client identifier from a normalized
// name. Names normalize before hashing, so accent and case variants of the
// same client collapse to one key across runs.
func ClientKey(name string) string {
	sum := sha256.Sum256([]byte(normalizer.NormalizeName(name)))
	digits := strconv.FormatUint(binary.BigEndian.Uint64(sum[:8]), 10)
	for len(digits) < clientKeyDigits {
		digits = "0" + digits
	}
	return digits[:clientKeyDigits]
}

// LoadFile persists one source file's transactions in a single database
// transaction. On any failure the whole file rolls back and newly created
// service mappings are discarded with it.
func (l *Loader) LoadFile(ctx context.Context, transactions []extractor.Transaction) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	tx, err := l.repo.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	created := make(map[classifier.Service]int64)
	nextID := l.nextID

	for _, t := range transactions {
		profileID, ok := l.profiles[t.Service]
		if !ok {
			profileID, ok = created[t.Service]
		}
		if !ok {
			accountID := nextID
			profileID = nextID
			if err := l.repo.InsertAccount(ctx, tx, accountID, string(t.Service)); err != nil {
				return 0, err
			}
			if err := l.repo.InsertProfile(ctx, tx, profileID, accountID, string(t.Service)); err != nil {
				return 0, err
			}
			created[t.Service] = profileID
			nextID++
		}

		key := ClientKey(t.Client)
		if err := l.repo.UpsertClient(ctx, tx, key, t.Client); err != nil {
			return 0, err
		}

		start := t.Date.UnixMilli()
		due := t.Date.Add(subscriptionPeriod).UnixMilli()
		if err := l.repo.InsertTransaction(ctx, tx, key, profileID, start, due, t.Amount); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	// Merge only after commit so a rolled-back file cannot leave the map
	// pointing at profiles that were never persisted.
	for svc, id := range created {
		l.profiles[svc] = id
	}
	l.nextID = nextID

	if len(created) > 0 {
		l.logger.Info("created service profiles", slog.Int("count", len(created)))
	}
	return len(transactions), nil
}
