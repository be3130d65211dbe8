package quotes

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ceramicarte/preventivi-backend/pkg/errors"
)

func TestManagerPutWithDelete(t *testing.T) {
	m := NewManager(time.Minute, nil)

	d := NewDraft()
	id := m.Put(d)
	assert.Equal(t, d.ID, id)
	assert.Equal(t, 1, m.Len())

	err := m.With(id, func(d *Draft) error {
		d.SetNotes("dentro la sessione")
		return nil
	})
	require.NoError(t, err)

	err = m.With(id, func(d *Draft) error {
		assert.Equal(t, "dentro la sessione", d.Notes)
		return nil
	})
	require.NoError(t, err)

	m.Delete(id)
	assert.Equal(t, 0, m.Len())

	err = m.With(id, func(*Draft) error { return nil })
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestManagerWith_UnknownSession(t *testing.T) {
	m := NewManager(time.Minute, nil)
	err := m.With(uuid.New(), func(*Draft) error { return nil })
	require.Error(t, err)
}

func TestManagerEvictStale(t *testing.T) {
	m := NewManager(time.Minute, nil)

	stale := m.Put(NewDraft())

	// Age only the stale session by registering the fresh one later.
	time.Sleep(50 * time.Millisecond)
	fresh := m.Put(NewDraft())
	now := time.Now()

	evicted := m.evictStale(now.Add(time.Minute - 25*time.Millisecond))
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.With(fresh, func(*Draft) error { return nil }))
	err := m.With(stale, func(*Draft) error { return nil })
	require.Error(t, err)
}

func TestManagerSerializesAccess(t *testing.T) {
	m := NewManager(time.Minute, nil)
	id := m.Put(NewDraft())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.With(id, func(d *Draft) error {
				d.AddManualItem()
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, m.With(id, func(d *Draft) error {
		assert.Len(t, d.Items, 20)
		return nil
	}))
}
