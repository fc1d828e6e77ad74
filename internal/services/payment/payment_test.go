package payment

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fithub/membership-service/internal/models"
)

func TestSimulator_Charge(t *testing.T) {
	s := NewSimulator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NoError(t, s.Charge(context.Background(), models.Member{ID: 1}, models.Plan{ID: 1, Price: 30}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Charge(ctx, models.Member{ID: 1}, models.Plan{ID: 1}), context.Canceled)
}
