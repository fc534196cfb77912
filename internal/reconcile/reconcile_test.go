package reconcile_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/reconcile"
	"github.com/systmms/aws-secrets/internal/secrets"
	"github.com/systmms/aws-secrets/internal/secretstore"
	"github.com/systmms/aws-secrets/tests/fakes"
)

// memoryStore is a minimal reconcile.Store for tests that do not need AWS types.
type memoryStore struct {
	remote   *secrets.Map
	fetchErr error
	writeErr error
	updates  []*secrets.Map
}

func (s *memoryStore) Fetch(context.Context) (*secrets.Map, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.remote.Clone(), nil
}

func (s *memoryStore) Update(_ context.Context, m *secrets.Map) error {
	s.updates = append(s.updates, m.Clone())
	if s.writeErr != nil {
		return s.writeErr
	}
	s.remote = m.Clone()
	return nil
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    reconcile.Mode
		wantErr bool
	}{
		{"merge", reconcile.ModeMerge, false},
		{"overwrite", reconcile.ModeOverwrite, false},
		{" Overwrite ", reconcile.ModeOverwrite, false},
		{"replace", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := reconcile.ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsKind(err, errors.KindConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeMerge(t *testing.T) {
	t.Parallel()

	local := secrets.FromPairs("A", "1")
	remote := secrets.FromPairs("A", "0", "B", "2")

	plan := reconcile.Compute(local, remote, reconcile.ModeMerge)

	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, plan.Target.ToMap())
	assert.Equal(t, []reconcile.Change{{Key: "A", Value: "1"}}, plan.Changed)
	assert.Empty(t, plan.Added)
	assert.Empty(t, plan.Removed)
	assert.Equal(t, 1, plan.Modified())
}

func TestComputeOverwrite(t *testing.T) {
	t.Parallel()

	local := secrets.FromPairs("A", "1")
	remote := secrets.FromPairs("A", "0", "B", "2")

	plan := reconcile.Compute(local, remote, reconcile.ModeOverwrite)

	assert.Equal(t, map[string]string{"A": "1"}, plan.Target.ToMap())
	assert.Equal(t, []reconcile.Change{{Key: "A", Value: "1"}}, plan.Changed)
	assert.Empty(t, plan.Added)
	assert.Equal(t, []string{"B"}, plan.Removed)
}

func TestComputeOrdering(t *testing.T) {
	t.Parallel()

	local := secrets.FromPairs("NEW2", "x", "SHARED", "changed", "NEW1", "y", "SAME", "s")
	remote := secrets.FromPairs("R2", "r", "SAME", "s", "SHARED", "orig", "R1", "r")

	merge := reconcile.Compute(local, remote, reconcile.ModeMerge)
	assert.Equal(t, []string{"R2", "SAME", "SHARED", "R1", "NEW2", "NEW1"}, merge.Target.Keys(),
		"remote order first, then new local keys")
	assert.Equal(t, []reconcile.Change{{Key: "NEW2", Value: "x"}, {Key: "NEW1", Value: "y"}}, merge.Added)
	assert.Equal(t, []reconcile.Change{{Key: "SHARED", Value: "changed"}}, merge.Changed)

	overwrite := reconcile.Compute(local, remote, reconcile.ModeOverwrite)
	assert.Equal(t, local.Keys(), overwrite.Target.Keys())
	assert.Equal(t, []string{"R2", "R1"}, overwrite.Removed)
}

func TestComputeEmptyValuesCountAsPresent(t *testing.T) {
	t.Parallel()

	local := secrets.FromPairs("EMPTY", "", "ZERO", "0")
	remote := secrets.FromPairs("EMPTY", "", "GONE", "")

	plan := reconcile.Compute(local, remote, reconcile.ModeOverwrite)
	assert.Equal(t, []reconcile.Change{{Key: "ZERO", Value: "0"}}, plan.Added)
	assert.Empty(t, plan.Changed)
	assert.Equal(t, []string{"GONE"}, plan.Removed)
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	local := secrets.FromPairs("A", "1")
	remote := secrets.FromPairs("B", "2")

	plan := reconcile.Compute(local, remote, reconcile.ModeMerge)
	plan.Target.Set("C", "3")

	assert.Equal(t, map[string]string{"A": "1"}, local.ToMap())
	assert.Equal(t, map[string]string{"B": "2"}, remote.ToMap())
}

func TestComputeNoChanges(t *testing.T) {
	t.Parallel()

	m := secrets.FromPairs("A", "1", "B", "2")
	for _, mode := range []reconcile.Mode{reconcile.ModeMerge, reconcile.ModeOverwrite} {
		plan := reconcile.Compute(m, m.Clone(), mode)
		assert.True(t, plan.Empty(), string(mode))
		assert.True(t, m.Equal(plan.Target), string(mode))
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("merge_applies_once", func(t *testing.T) {
		t.Parallel()
		store := &memoryStore{remote: secrets.FromPairs("A", "0", "B", "2")}

		res, err := reconcile.Run(context.Background(), store, secrets.FromPairs("A", "1"), reconcile.Options{Mode: reconcile.ModeMerge})
		require.NoError(t, err)
		assert.True(t, res.Applied)
		require.Len(t, store.updates, 1)
		assert.Equal(t, map[string]string{"A": "1", "B": "2"}, store.updates[0].ToMap())
	})

	t.Run("overwrite_fetches_remote_for_removals", func(t *testing.T) {
		t.Parallel()
		store := &memoryStore{remote: secrets.FromPairs("A", "0", "B", "2")}

		res, err := reconcile.Run(context.Background(), store, secrets.FromPairs("A", "1"), reconcile.Options{Mode: reconcile.ModeOverwrite})
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, res.Removed)
		require.Len(t, store.updates, 1)
		assert.Equal(t, map[string]string{"A": "1"}, store.updates[0].ToMap())
	})

	t.Run("dry_run_never_updates", func(t *testing.T) {
		t.Parallel()
		store := &memoryStore{remote: secrets.FromPairs("A", "0", "B", "2")}

		res, err := reconcile.Run(context.Background(), store, secrets.FromPairs("A", "1"), reconcile.Options{Mode: reconcile.ModeOverwrite, DryRun: true})
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Empty(t, store.updates)
		assert.Equal(t, []reconcile.Change{{Key: "A", Value: "1"}}, res.Changed)
		assert.Equal(t, []string{"B"}, res.Removed)
	})

	t.Run("default_mode_is_merge", func(t *testing.T) {
		t.Parallel()
		store := &memoryStore{remote: secrets.FromPairs("B", "2")}

		res, err := reconcile.Run(context.Background(), store, secrets.FromPairs("A", "1"), reconcile.Options{})
		require.NoError(t, err)
		assert.Equal(t, reconcile.ModeMerge, res.Mode)
		assert.Empty(t, res.Removed)
	})

	t.Run("fetch_error_stops", func(t *testing.T) {
		t.Parallel()
		store := &memoryStore{fetchErr: stderrors.New("boom")}

		_, err := reconcile.Run(context.Background(), store, secrets.New(), reconcile.Options{Mode: reconcile.ModeMerge})
		require.EqualError(t, err, "boom")
		assert.Empty(t, store.updates)
	})

	t.Run("update_error_is_returned", func(t *testing.T) {
		t.Parallel()
		store := &memoryStore{remote: secrets.New(), writeErr: stderrors.New("denied")}

		res, err := reconcile.Run(context.Background(), store, secrets.FromPairs("A", "1"), reconcile.Options{Mode: reconcile.ModeMerge})
		require.EqualError(t, err, "denied")
		assert.False(t, res.Applied)
		assert.Len(t, res.Added, 1)
	})
}

func TestRunAgainstSecretStore(t *testing.T) {
	t.Parallel()

	sm := fakes.NewFakeSecretsManagerClient()
	sm.AddSecretString("app", `{"A":"0","B":"2"}`)
	store, err := secretstore.New(context.Background(), secretstore.StoreConfig{SecretID: "app"},
		secretstore.WithClients(sm, fakes.NewFakeSTSClient()))
	require.NoError(t, err)

	_, err = reconcile.Run(context.Background(), store, secrets.FromPairs("A", "1"), reconcile.Options{Mode: reconcile.ModeMerge, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 0, sm.CallCount("UpdateSecret"))

	_, err = reconcile.Run(context.Background(), store, secrets.FromPairs("A", "1"), reconcile.Options{Mode: reconcile.ModeMerge})
	require.NoError(t, err)
	assert.Equal(t, 1, sm.CallCount("UpdateSecret"))
	assert.Equal(t, `{"A":"1","B":"2"}`, sm.SecretString("app"))
}
