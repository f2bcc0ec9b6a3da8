package track_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"pricewatch"
	"pricewatch/mock"
	"pricewatch/track"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	t.Run("rejects an invalid schedule", func(t *testing.T) {
		t.Parallel()

		_, err := track.NewScheduler(&track.Tracker{}, "every now and then", quietLogger())

		require.Error(t, err)
		assert.Equal(t, pricewatch.EINVALID, pricewatch.ErrorCode(err))
		assert.Contains(t, pricewatch.ErrorMessage(err), "invalid schedule")
	})

	t.Run("empty spec uses the default", func(t *testing.T) {
		t.Parallel()

		s, err := track.NewScheduler(&track.Tracker{}, "", quietLogger())

		require.NoError(t, err)
		assert.Equal(t, track.DefaultSchedule, s.Schedule())
	})

	t.Run("accepts a standard five field spec", func(t *testing.T) {
		t.Parallel()

		s, err := track.NewScheduler(&track.Tracker{}, "30 6 * * 1", quietLogger())

		require.NoError(t, err)
		assert.Equal(t, "30 6 * * 1", s.Schedule())
	})
}

func TestScheduler_Start(t *testing.T) {
	t.Parallel()

	t.Run("runs the tracker immediately", func(t *testing.T) {
		t.Parallel()

		publishedCh := make(chan *pricewatch.Grid, 1)
		tracker := &track.Tracker{
			Catalog: catalogSource(),
			Fetcher: stubFetcher(),
			Resolver: priceByURL(map[string]pricewatch.ResolvedPrice{
				saltAmazonURL: pricewatch.Resolved(499),
			}),
			Sinks: []pricewatch.LedgerSink{
				&mock.LedgerSink{PublishFn: func(_ context.Context, g *pricewatch.Grid) error {
					publishedCh <- g
					return nil
				}},
			},
			Logger:      quietLogger(),
			RetryDelays: []time.Duration{},
		}

		s, err := track.NewScheduler(tracker, track.DefaultSchedule, quietLogger())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop()

		select {
		case grid := <-publishedCh:
			assert.NotEmpty(t, grid.Rows)
		case <-time.After(2 * time.Second):
			t.Fatal("expected an immediate run on start")
		}
	})
}
