package services

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/davoram/hearth/internal/core/domain"
	"github.com/davoram/hearth/internal/core/ports"
	"github.com/davoram/hearth/internal/logger"
)

// ModelHandle bundles the per-model collaborators the loader hands over
// when a model comes online.
type ModelHandle struct {
	Metadata  ports.MetadataSource
	Tokenizer ports.Tokenizer
	Engine    ports.InferenceEngine
}

// ModelRegistry owns the set of loaded models. It is the single writer;
// everything else reads through the ports.ModelProvider view. Entries
// are replaced wholesale, never mutated in place.
type ModelRegistry struct {
	models       *xsync.Map[string, *ModelHandle]
	onUnregister []func(modelID string)
	logger       *logger.StyledLogger
}

func NewModelRegistry(log *logger.StyledLogger) *ModelRegistry {
	return &ModelRegistry{
		models: xsync.NewMap[string, *ModelHandle](),
		logger: log,
	}
}

// OnUnregister adds a callback run whenever a model is removed or
// replaced. The metadata cache hooks in here to evict stale snapshots.
func (r *ModelRegistry) OnUnregister(fn func(modelID string)) {
	r.onUnregister = append(r.onUnregister, fn)
}

// Register installs or replaces a model. Replacing fires the
// unregister callbacks first so cached metadata for the old weights
// never serves the new ones.
func (r *ModelRegistry) Register(modelID string, handle *ModelHandle) error {
	if modelID == "" || handle == nil {
		return fmt.Errorf("registry: model id and handle are required")
	}

	if _, replaced := r.models.Load(modelID); replaced {
		r.notifyUnregister(modelID)
	}
	r.models.Store(modelID, handle)
	r.logger.InfoWithModel("Model registered", modelID)
	return nil
}

func (r *ModelRegistry) Unregister(modelID string) {
	if _, ok := r.models.LoadAndDelete(modelID); !ok {
		return
	}
	r.notifyUnregister(modelID)
	r.logger.InfoWithModel("Model unregistered", modelID)
}

func (r *ModelRegistry) notifyUnregister(modelID string) {
	for _, fn := range r.onUnregister {
		fn(modelID)
	}
}

func (r *ModelRegistry) MetadataSource(modelID string) (ports.MetadataSource, error) {
	handle, err := r.handle(modelID)
	if err != nil {
		return nil, err
	}
	return handle.Metadata, nil
}

func (r *ModelRegistry) Tokenizer(modelID string) (ports.Tokenizer, error) {
	handle, err := r.handle(modelID)
	if err != nil {
		return nil, err
	}
	return handle.Tokenizer, nil
}

func (r *ModelRegistry) Engine(modelID string) (ports.InferenceEngine, error) {
	handle, err := r.handle(modelID)
	if err != nil {
		return nil, err
	}
	return handle.Engine, nil
}

func (r *ModelRegistry) ListModels() []string {
	names := make([]string, 0, r.models.Size())
	r.models.Range(func(id string, _ *ModelHandle) bool {
		names = append(names, id)
		return true
	})
	sort.Strings(names)
	return names
}

func (r *ModelRegistry) handle(modelID string) (*ModelHandle, error) {
	handle, ok := r.models.Load(modelID)
	if !ok {
		return nil, fmt.Errorf("%q: %w", modelID, domain.ErrModelNotFound)
	}
	return handle, nil
}
