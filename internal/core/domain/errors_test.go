package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/unitcache/internal/core/domain"
)

func TestLoadFailure(t *testing.T) {
	cause := errors.New("exit status 2")
	err := error(domain.NewLoadFailure("alpha", "/units/alpha", cause))

	assert.ErrorIs(t, err, domain.ErrLoadFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `failed to load unit "alpha" from /units/alpha: exit status 2`, err.Error())

	var failure *domain.LoadFailure
	assert.ErrorAs(t, err, &failure)
	assert.Equal(t, "alpha", failure.UnitName)
}

func TestLoadFailure_NoCause(t *testing.T) {
	err := error(domain.NewLoadFailure("alpha", "/units/alpha", nil))

	assert.ErrorIs(t, err, domain.ErrLoadFailed)
	assert.Equal(t, `failed to load unit "alpha" from /units/alpha`, err.Error())
}

func TestLoadFailure_Cancelled(t *testing.T) {
	err := error(domain.NewLoadFailure("alpha", "/units/alpha",
		errors.Join(domain.ErrBatchCancelled, context.Canceled)))

	assert.ErrorIs(t, err, domain.ErrBatchCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrPathNotFound)
}
