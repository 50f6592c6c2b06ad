package repositories

import (
	"errors"
	"fmt"

	"timber-portal/models"
	"timber-portal/types"
	"timber-portal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository issues package sequence numbers per
// (organisation, process code) scope. Concurrent validations in the same
// scope are expected, so the counter row is read FOR UPDATE and the
// increment is still guarded by the value that was read. The locked read
// blocks behind a concurrent writer and returns the committed value, which
// matters under repeatable-read isolation where a plain re-read would keep
// returning the transaction's stale snapshot.
type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db}
}

const allocateAttempts = 5

// NextSequence atomically increments and returns the counter for the scope,
// creating it at zero on first use. Surfaces an allocation error only after
// the bounded retries are exhausted.
func (r *CounterRepository) NextSequence(orgID types.SnowflakeID, processCode string) (int, error) {
	if processCode == "" {
		return 0, utils.NewValidationError("process code is required")
	}

	for attempt := 0; attempt < allocateAttempts; attempt++ {
		var counter models.PackageCounter
		err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("organisation_id = ? AND process_code = ?", orgID, processCode).
			First(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = models.PackageCounter{OrganisationID: orgID, ProcessCode: processCode, LastSequence: 0}
			if err := r.db.Create(&counter).Error; err != nil {
				// lost the race to create the scope row, re-read and retry
				continue
			}
		} else if err != nil {
			return 0, err
		}

		next := counter.LastSequence + 1
		res := r.db.Model(&models.PackageCounter{}).
			Where("organisation_id = ? AND process_code = ? AND last_sequence = ?",
				orgID, processCode, counter.LastSequence).
			Update("last_sequence", next)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return next, nil
		}
		// another allocation won this scope, retry
	}

	return 0, utils.NewAllocationError(fmt.Sprintf("sequence contention on scope %s", processCode))
}

// Resync forces the counter to max(current, observedMax). Manual recovery
// only; the steady-state path never calls this.
func (r *CounterRepository) Resync(orgID types.SnowflakeID, processCode string, observedMax int) error {
	if processCode == "" {
		return utils.NewValidationError("process code is required")
	}
	if observedMax < 0 {
		return utils.NewValidationError("observed max must not be negative")
	}

	counter := models.PackageCounter{OrganisationID: orgID, ProcessCode: processCode}
	if err := r.db.Where("organisation_id = ? AND process_code = ?", orgID, processCode).
		FirstOrCreate(&counter).Error; err != nil {
		return err
	}

	return r.db.Model(&models.PackageCounter{}).
		Where("organisation_id = ? AND process_code = ? AND last_sequence < ?",
			orgID, processCode, observedMax).
		Update("last_sequence", observedMax).Error
}

// FormatPackageNumber renders <ORG-PREFIX>-<CATEGORY-CODE>-<sequence>,
// zero-padded to four digits.
func FormatPackageNumber(prefix, processCode string, sequence int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, processCode, sequence)
}
