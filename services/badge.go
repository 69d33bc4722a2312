package services

import (
	"errors"
	"fmt"

	"github.com/taskdesk/backend/models"
	"gorm.io/gorm"
)

// badgePrefix is the public employee identifier prefix (EMP001, EMP002, ...).
const badgePrefix = "EMP"

// maxBadgeAttempts bounds the retry loop when concurrent signups race for
// the same badge number. The unique index on employee_id is the authority;
// losing the race just means recomputing against the committed winner.
const maxBadgeAttempts = 5

// ErrBadgeConflict is returned when a unique badge could not be issued
// within maxBadgeAttempts.
var ErrBadgeConflict = errors.New("employee id conflict")

// nextBadge computes the next employee identifier from the highest badge
// already stored. Must run inside the transaction that inserts the user so
// a duplicate-key failure can be retried as a unit.
func nextBadge(tx *gorm.DB) (string, error) {
	var maxSeq int64
	row := tx.Model(&models.User{}).
		Where("employee_id IS NOT NULL").
		Select("COALESCE(MAX(CAST(substr(employee_id, 4) AS INTEGER)), 0)").
		Row()
	if err := row.Scan(&maxSeq); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", badgePrefix, maxSeq+1), nil
}
