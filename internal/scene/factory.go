package scene

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// DebugAssertions turns programmer errors (double delete, foreign component
// removal, cyclic parenting) into panics. When false they are logged.
var DebugAssertions = false

// Factory hands out actor IDs. Every actor created through the same factory
// gets a unique, non-zero ID.
type Factory struct {
	next atomic.Uint32
	log  *zap.Logger
}

// NewFactory creates an ID allocator. log may be nil.
func NewFactory(log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{log: log}
}

// Logger returns the logger shared by actors of this factory
func (f *Factory) Logger() *zap.Logger {
	return f.log
}

func (f *Factory) nextID() uint32 {
	return f.next.Add(1)
}

// CreateActor returns a new, parentless, self-active actor
func (f *Factory) CreateActor(name, tag string) *Actor {
	return newActor(f, KindActor, name, tag)
}

// CreateScene returns a new scene root with an empty FastAccess
func (f *Factory) CreateScene(name, tag string) *Actor {
	return newActor(f, KindScene, name, tag)
}

// NewScene creates a scene root with its own factory
func NewScene(name string, log *zap.Logger) *Actor {
	return NewFactory(log).CreateScene(name, "")
}

func (f *Factory) assert(cond bool, msg string, fields ...zap.Field) bool {
	if cond {
		return true
	}
	if DebugAssertions {
		panic(fmt.Sprintf("scene: %s", msg))
	}
	f.log.Warn(msg, fields...)
	return false
}
