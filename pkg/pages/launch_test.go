package pages_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/backyard-e2e/pkg/driver/mock"
	"github.com/devicelab-dev/backyard-e2e/pkg/pages"
)

func TestMeasureLaunch(t *testing.T) {
	base, b := newBase()
	var launched atomic.Bool
	b.OnTerminate = func(string) { launched.Store(false) }
	b.OnActivate = func(string) { launched.Store(true) }
	title := mock.NewElement("Backyards", "Backyards", 16, 100)
	b.Resolve(pages.BackyardsTitle, func(call int) ([]*mock.Element, error) {
		if !launched.Load() || call < 3 {
			return nil, nil
		}
		return []*mock.Element{title}, nil
	})

	res, err := pages.MeasureLaunch(context.Background(), base, time.Second)
	require.NoError(t, err)
	assert.True(t, res.Ready)
	assert.Equal(t, 3, res.Polls)
	assert.GreaterOrEqual(t, res.Duration, 2*pages.LaunchPollInterval)
	assert.Equal(t, []string{bundleID}, b.Terminated())
	assert.Equal(t, []string{bundleID}, b.Activated())
}

func TestMeasureLaunch_NotReady(t *testing.T) {
	base, _ := newBase()

	res, err := pages.MeasureLaunch(context.Background(), base, 200*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, res.Ready)
	assert.GreaterOrEqual(t, res.Duration, 200*time.Millisecond)
}

func TestMeasureLaunch_TerminateFails(t *testing.T) {
	base, b := newBase()
	boom := errors.New("boom")
	b.FailWith(boom)

	_, err := pages.MeasureLaunch(context.Background(), base, time.Second)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, b.Activated())
}
