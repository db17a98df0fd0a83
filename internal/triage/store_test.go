package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

func TestStoreLifecycle(t *testing.T) {
	st := NewStore()
	s := st.Create()

	got, err := st.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())

	st.Delete(s.ID())
	_, err = st.Get(s.ID())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestStoreSweepSkipsBusyAndFreshSessions(t *testing.T) {
	now := time.Now()
	st := NewStore()
	st.now = func() time.Time { return now.Add(-time.Hour) }
	stale := st.Create()
	busy := st.Create()
	busy.busy = true
	st.now = func() time.Time { return now }
	fresh := st.Create()

	removed := st.Sweep(30 * time.Minute)
	assert.Equal(t, 1, removed)

	_, err := st.Get(stale.ID())
	assert.Error(t, err)
	_, err = st.Get(busy.ID())
	assert.NoError(t, err)
	_, err = st.Get(fresh.ID())
	assert.NoError(t, err)
}
