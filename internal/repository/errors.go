package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/prakkhar03/skillbridge/internal/model"
)

// notFound maps gorm's missing-row error onto the shared taxonomy.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", what, err)
}
