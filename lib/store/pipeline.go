package store

import "sync"

// Pipeline is a per-key business transform. A set pipeline receives the value the
// caller passed to Set; a get pipeline receives the decoded stored value.
type Pipeline func(value any) (any, error)

// pipelineRegistry maps logical keys to at most one pipeline per direction
type pipelineRegistry struct {
	mu        sync.RWMutex
	pipelines map[Direction]map[string]Pipeline
}

func newPipelineRegistry() *pipelineRegistry {
	return &pipelineRegistry{
		pipelines: map[Direction]map[string]Pipeline{
			DirGet: {},
			DirSet: {},
		},
	}
}

// add registers p for key, replacing any earlier pipeline for the same key and direction
func (r *pipelineRegistry) add(dir Direction, key string, p Pipeline) error {
	if err := dir.validate(); err != nil {
		return err
	}
	if p == nil {
		return NewError(RetCInvalidOperation, "pipeline must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines[dir][key] = p
	return nil
}

func (r *pipelineRegistry) remove(dir Direction, key string) error {
	if err := dir.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pipelines[dir], key)
	return nil
}

// apply runs the pipeline registered for key. Without one the value is returned unchanged.
func (r *pipelineRegistry) apply(dir Direction, key string, value any) (any, error) {
	r.mu.RLock()
	p, ok := r.pipelines[dir][key]
	r.mu.RUnlock()

	if !ok {
		return value, nil
	}
	return p(value)
}
