package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
)

// ErrMissingNumber is returned when the bundle has no case number to key on.
var ErrMissingNumber = errors.New("case number is required")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveComplete writes the case, its sub-documents and its timeline in one transaction.
// A case number that already exists is not an error: the result reports
// Success=false with a message, the same way the remote backend does.
func (r *Repository) SaveComplete(ctx context.Context, req entities.SaveRequest) (*entities.CommitResult, error) {
	number := strings.TrimSpace(req.Summary.Number)
	if number == "" {
		return nil, ErrMissingNumber
	}

	record := entities.Case{
		Number:    number,
		Type:      req.Summary.Type,
		FiledAt:   req.Summary.FiledAt,
		Requester: req.Summary.Requester,
		SourceURL: req.URL,
	}
	for i, d := range req.SubDocuments {
		record.SubDocuments = append(record.SubDocuments, entities.CaseDocument{
			Position:   i,
			Number:     d.Number,
			Type:       d.Type,
			Date:       d.Date,
			IncludedAt: d.IncludedAt,
			Unit:       d.Unit,
			Link:       d.Link,
		})
	}
	for i, e := range req.Events {
		record.Events = append(record.Events, entities.CaseEvent{
			Position:    i,
			OccurredAt:  e.OccurredAt,
			Unit:        e.Unit,
			Description: e.Description,
		})
	}

	var duplicate bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Case{}).Where("number = ?", number).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			duplicate = true
			return nil
		}
		// Creates the case and both associations.
		return tx.Create(&record).Error
	})
	if err != nil {
		// A concurrent save of the same number can pass the count and lose on the index.
		if !isDuplicateKey(err) {
			return nil, fmt.Errorf("failed to save case %s: %w", number, err)
		}
		duplicate = true
	}

	if duplicate {
		return &entities.CommitResult{
			Success: false,
			Message: fmt.Sprintf("processo %s já cadastrado", number),
		}, nil
	}

	return &entities.CommitResult{
		CaseID:         int64(record.ID),
		DocumentsSaved: len(record.SubDocuments),
		EventsSaved:    len(record.Events),
		Success:        true,
		Message:        fmt.Sprintf("processo %s salvo", number),
	}, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// GetByNumber loads a case with its sub-documents and events in their original order.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*entities.Case, error) {
	var record entities.Case
	err := r.db.WithContext(ctx).
		Preload("SubDocuments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("number = ?", number).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Count returns the number of stored cases.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Case{}).Count(&n).Error
	return n, err
}
