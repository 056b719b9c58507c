package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/logger"
)

func newTestRegistry() *ModelRegistry {
	return NewModelRegistry(logger.NewDiscard())
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := newTestRegistry()
	engine := &fakeEngine{response: "hi"}

	require.NoError(t, r.Register("phi-3-mini", &ModelHandle{Engine: engine}))

	got, err := r.Engine("phi-3-mini")
	require.NoError(t, err)
	assert.Same(t, engine, got)
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := newTestRegistry()

	assert.Error(t, r.Register("", &ModelHandle{}))
	assert.Error(t, r.Register("phi-3-mini", nil))
}

func TestRegistry_UnknownModel(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Engine("missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)

	_, err = r.MetadataSource("missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)

	_, err = r.Tokenizer("missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestRegistry_UnregisterFiresCallbacks(t *testing.T) {
	r := newTestRegistry()

	var evicted []string
	r.OnUnregister(func(modelID string) { evicted = append(evicted, modelID) })

	require.NoError(t, r.Register("phi-3-mini", &ModelHandle{}))
	r.Unregister("phi-3-mini")

	assert.Equal(t, []string{"phi-3-mini"}, evicted)

	// unregistering something absent is a no-op
	r.Unregister("phi-3-mini")
	assert.Len(t, evicted, 1)
}

func TestRegistry_ReplaceFiresCallbacks(t *testing.T) {
	r := newTestRegistry()

	var evicted []string
	r.OnUnregister(func(modelID string) { evicted = append(evicted, modelID) })

	old := &fakeEngine{}
	fresh := &fakeEngine{}
	require.NoError(t, r.Register("phi-3-mini", &ModelHandle{Engine: old}))
	require.NoError(t, r.Register("phi-3-mini", &ModelHandle{Engine: fresh}))

	assert.Equal(t, []string{"phi-3-mini"}, evicted, "replacing must evict the old snapshot")

	got, err := r.Engine("phi-3-mini")
	require.NoError(t, err)
	assert.Same(t, fresh, got)
}

func TestRegistry_ListModelsSorted(t *testing.T) {
	r := newTestRegistry()

	for _, id := range []string{"qwen2-7b", "llama-3-8b", "phi-3-mini"} {
		require.NoError(t, r.Register(id, &ModelHandle{}))
	}

	assert.Equal(t, []string{"llama-3-8b", "phi-3-mini", "qwen2-7b"}, r.ListModels())
}
