package importer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultBatchSize is the number of cards inserted per call.
const DefaultBatchSize = 1000

// Defaults for new cards.
const (
	StatusNew         = "new"
	DefaultEaseFactor = 2.5
)

// Importer inserts cards into a Store.
type Importer struct {
	store     Store
	batchSize int
	logger    *logrus.Logger
}

// NewImporter creates an importer. A batchSize <= 0 uses DefaultBatchSize.
func NewImporter(store Store, batchSize int, logger *logrus.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Importer{store: store, batchSize: batchSize, logger: logger}
}

// Import appends cards to the deck and returns how many were inserted.
// Blank cards are skipped. The deck's next position is advanced past the
// inserted cards once all batches are in.
func (im *Importer) Import(ctx context.Context, cards []Card, deckID, userID, templateID string) (int, error) {
	position, err := im.store.NextPosition(ctx, deckID)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for start := 0; start < len(cards); start += im.batchSize {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		end := start + im.batchSize
		if end > len(cards) {
			end = len(cards)
		}

		var rows []CardRow
		for _, card := range cards[start:end] {
			if card.IsBlank() {
				continue
			}
			rows = append(rows, CardRow{
				DeckID:       deckID,
				UserID:       userID,
				TemplateID:   templateID,
				FieldValues:  card.FieldValues,
				Tags:         card.Tags,
				SortPosition: position,
				SRSStatus:    StatusNew,
				EaseFactor:   DefaultEaseFactor,
			})
			position++
		}
		if len(rows) == 0 {
			continue
		}

		if err := im.store.InsertCards(ctx, rows); err != nil {
			return inserted, fmt.Errorf("failed to insert batch at card %d: %w", start, err)
		}
		inserted += len(rows)
		im.logger.WithFields(logrus.Fields{
			"inserted": inserted,
			"total":    len(cards),
		}).Info("Inserted cards")
	}

	if err := im.store.SetNextPosition(ctx, deckID, position); err != nil {
		return inserted, err
	}
	return inserted, nil
}
