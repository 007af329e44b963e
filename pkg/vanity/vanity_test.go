package vanity_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/vanity"
)

func TestValidate(t *testing.T) {
	assert.Error(t, vanity.Options{}.Validate())
	assert.Error(t, vanity.Options{Suffix: "p0mp"}.Validate())
	assert.Error(t, vanity.Options{Prefix: "I"}.Validate())
	assert.NoError(t, vanity.Options{Suffix: "pump"}.Validate())
	// 'I' is not base58 but 'i' is
	assert.NoError(t, vanity.Options{Prefix: "I", CaseInsensitive: true}.Validate())
}

func TestGenerateSingleChar(t *testing.T) {
	res, err := vanity.Generate(context.Background(), vanity.Options{Suffix: "z", Workers: 2, Timeout: time.Minute})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.PublicKey.String(), "z"))
	assert.Equal(t, res.PublicKey, res.PrivateKey.PublicKey())
	assert.NotZero(t, res.Attempts)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := vanity.Generate(ctx, vanity.Options{Suffix: "pumpzzzzzz", Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimateDifficulty(t *testing.T) {
	assert.Equal(t, uint64(1), vanity.EstimateDifficulty(0))
	assert.Equal(t, uint64(58*58*58*58), vanity.EstimateDifficulty(4))
}
