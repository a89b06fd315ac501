package corpse

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SessionIsIdempotent(t *testing.T) {
	st := NewStore()

	s1 := st.Session("chan-1")
	s2 := st.Session("chan-1")
	require.NotNil(t, s1)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, st.Len())
}

func TestStore_LookupDoesNotCreate(t *testing.T) {
	st := NewStore()

	_, ok := st.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, st.Len())

	created := st.Session("present")
	found, ok := st.Lookup("present")
	require.True(t, ok)
	assert.Same(t, created, found)
}

func TestStore_ChannelsAreIndependent(t *testing.T) {
	st := NewStore()

	_, err := st.Session("a").Join("u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"u1"}, st.Session("a").Players())
	assert.Empty(t, st.Session("b").Players())
}

func TestStore_ClearKeepsSession(t *testing.T) {
	st := NewStore()
	s := st.Session("a")
	_, err := s.Join("u1")
	require.NoError(t, err)

	require.NoError(t, s.Clear("u1"))

	again, ok := st.Lookup("a")
	require.True(t, ok)
	assert.Same(t, s, again)
}

func TestStore_ConcurrentCreate(t *testing.T) {
	st := NewStore()

	var wg sync.WaitGroup
	got := make([]*Session, 64)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = st.Session(fmt.Sprintf("chan-%d", i%4))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, st.Len())
	for i := range got {
		assert.Same(t, got[i%4], got[i])
	}
}
