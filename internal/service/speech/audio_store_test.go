package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioStoreTakeReleases(t *testing.T) {
	store := NewAudioStore()
	store.Put(&Audio{ID: "a1", CallID: "call-1", Data: []byte("mp3")})

	got, ok := store.Take("a1")
	require.True(t, ok)
	assert.Equal(t, []byte("mp3"), got.Data)

	_, ok = store.Take("a1")
	assert.False(t, ok)
}

func TestAudioStoreReleaseCall(t *testing.T) {
	store := NewAudioStore()
	store.Put(&Audio{ID: "a1", CallID: "call-1"})
	store.Put(&Audio{ID: "a2", CallID: "call-1"})
	store.Put(&Audio{ID: "b1", CallID: "call-2"})

	released := store.ReleaseCall("call-1")

	assert.Equal(t, 2, released)
	assert.Equal(t, 1, store.Len())

	_, ok := store.Take("b1")
	assert.True(t, ok)
}

func TestAudioStoreTakeMissing(t *testing.T) {
	store := NewAudioStore()

	_, ok := store.Take("nope")
	assert.False(t, ok)
}
