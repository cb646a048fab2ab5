package model_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/contriblens/contriblens/internal/domain/model"
)

func TestOwnerOf(t *testing.T) {
	assert.Equal(t, "golang", model.OwnerOf("golang/go"))
	assert.Equal(t, "a", model.OwnerOf("a/b/c"))
	assert.Equal(t, "", model.OwnerOf("no-slash"))
	assert.Equal(t, "", model.OwnerOf(""))
}

func TestImpactTierOrderAndNames(t *testing.T) {
	assert.True(t, model.ImpactCritical > model.ImpactHigh)
	assert.True(t, model.ImpactHigh > model.ImpactMedium)
	assert.True(t, model.ImpactMedium > model.ImpactLow)

	assert.Equal(t, "Critical", model.ImpactCritical.String())
	assert.Equal(t, "Low", model.ImpactLow.String())

	assert.True(t, model.ImpactHigh.IsHigh())
	assert.True(t, model.ImpactCritical.IsHigh())
	assert.False(t, model.ImpactMedium.IsHigh())
}

func TestIsRateLimit(t *testing.T) {
	reset := time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC)
	err := fmt.Errorf("fetching events: %w", &model.RateLimitError{Reset: reset})

	assert.True(t, model.IsRateLimit(err))
	assert.False(t, model.IsRateLimit(errors.New("boom")))
	assert.False(t, model.IsRateLimit(nil))
}
