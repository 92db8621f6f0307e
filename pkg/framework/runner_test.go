package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerStopsOthersOnFailure(t *testing.T) {
	failure := errors.New("bridge down")
	r := NewRunner().Go(
		namedRunner{RunFunc(blockUntilDone)},
		RunFunc(func(context.Context) error { return failure }),
	)
	errCh := make(chan error, 1)
	go func() { errCh <- r.Wait() }()
	select {
	case err := <-errCh:
		require.True(t, errors.Is(err, failure))
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner().Go(RunFunc(blockUntilDone), RunFunc(blockUntilDone))
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())

	first, second := errors.New("first"), errors.New("second")
	errs.Add(first)
	require.Equal(t, "first", errs.Aggregate().Error())
	errs.Add(nil, second)
	err := errs.Aggregate()
	require.Equal(t, "Multiple errors:\nfirst\nsecond", err.Error())
	require.True(t, errors.Is(err, second))
}

type namedRunner struct {
	RunFunc
}

func (namedRunner) Name() string { return "blocker" }
