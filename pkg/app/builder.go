package app

import (
	"log/slog"
	"reflect"

	"github.com/rescp17/tunePlayer/pkg/async"
	"github.com/rescp17/tunePlayer/pkg/concurrency"
	"github.com/rescp17/tunePlayer/pkg/models"
	"github.com/rescp17/tunePlayer/pkg/orderedmap"
	"github.com/rescp17/tunePlayer/pkg/tohost"
)

// Builder assembles an App. The With steps may be called in any order and
// more than once; Build runs model steps first, then capabilities, then
// view-models, so view-model constructors can already take model handles.
type Builder[E any] struct {
	modelSteps []func(*ModelsBuilder)
	hostSteps  []func(*tohost.Builder)
	vmSteps    []func(*ViewModelsBuilder[E])
	adapter    async.Adapter
	projector  Projector
	logger     *slog.Logger
	metrics    *Metrics
	built      bool
}

func NewBuilder[E any]() *Builder[E] {
	return &Builder[E]{}
}

func (b *Builder[E]) WithModels(fn func(mb *ModelsBuilder)) *Builder[E] {
	b.modelSteps = append(b.modelSteps, fn)
	return b
}

func (b *Builder[E]) WithToHosts(fn func(hb *tohost.Builder)) *Builder[E] {
	b.hostSteps = append(b.hostSteps, fn)
	return b
}

func (b *Builder[E]) WithViewModels(fn func(vb *ViewModelsBuilder[E])) *Builder[E] {
	b.vmSteps = append(b.vmSteps, fn)
	return b
}

// WithAsyncRuntime installs the adapter tasks are spawned on. When it also
// implements async.ThreadOwner the app is pinned to the adapter's thread.
func (b *Builder[E]) WithAsyncRuntime(adapter async.Adapter) *Builder[E] {
	b.adapter = adapter
	return b
}

func (b *Builder[E]) WithProjector(p Projector) *Builder[E] {
	b.projector = p
	return b
}

func (b *Builder[E]) WithLogger(logger *slog.Logger) *Builder[E] {
	b.logger = logger
	return b
}

func (b *Builder[E]) WithMetrics(m *Metrics) *Builder[E] {
	b.metrics = m
	return b
}

// Build creates the App. Duplicate registrations panic here. Without an
// async adapter the app gets async.NoopAdapter, which panics on first use.
func (b *Builder[E]) Build() *App[E] {
	if b.built {
		panic(&Error{Kind: KindConfiguration, Op: "Build", Msg: "builder was already used"})
	}
	b.built = true

	rt := &runtime{
		store:     models.NewStore(),
		vms:       orderedmap.New[reflect.Type, any](),
		adapter:   b.adapter,
		projector: b.projector,
		logger:    b.logger,
		metrics:   b.metrics,
	}
	if rt.adapter == nil {
		rt.adapter = async.NoopAdapter{}
	}
	if rt.logger == nil {
		rt.logger = slog.Default()
	}
	if owner, ok := rt.adapter.(async.ThreadOwner); ok {
		rt.thread = owner.Thread()
	} else {
		rt.thread = concurrency.NewThread()
	}

	mb := &ModelsBuilder{store: rt.store}
	for _, step := range b.modelSteps {
		step(mb)
	}

	hb := tohost.NewBuilder()
	for _, step := range b.hostSteps {
		step(hb)
	}
	rt.hosts = hb.Build()

	a := &App[E]{rt: rt}
	vb := &ViewModelsBuilder[E]{app: a}
	for _, step := range b.vmSteps {
		step(vb)
	}

	rt.logger.Debug("App built",
		"models", rt.store.Len(),
		"to_hosts", len(rt.hosts.Types()),
		"view_models", len(a.vms),
	)
	return a
}

// ModelsBuilder registers model types.
type ModelsBuilder struct {
	store *models.Store
}

// InsertModel registers T holding its zero value.
func InsertModel[T any](mb *ModelsBuilder) models.Handle[T] {
	return models.Insert[T](mb.store)
}

// ViewModelsBuilder registers view-models. Models and capabilities are
// already in place when its steps run.
type ViewModelsBuilder[E any] struct {
	app *App[E]
}

// Add registers vm under its dynamic type.
func (vb *ViewModelsBuilder[E]) Add(vm ViewModel[E]) {
	if vm == nil {
		panic(&Error{Kind: KindConfiguration, Op: "AddViewModel", Msg: "view-model is nil"})
	}
	rt := vb.app.rt
	typ := reflect.TypeOf(vm)
	if rt.vms.Has(typ) {
		panic(&Error{Kind: KindConfiguration, Op: "AddViewModel", Type: typ, Msg: "is already registered"})
	}
	rt.vms.Set(typ, vm)
	vb.app.vms = append(vb.app.vms, vmEntry[E]{name: vmName(typ), vm: vm})
}

// Scope exposes the models and capabilities registered so far, for
// view-model constructors that need to read them.
func (vb *ViewModelsBuilder[E]) Scope() Scope {
	return vb.app
}

// ModelHandle returns the handle of an already registered model T.
func ModelHandle[T any, E any](vb *ViewModelsBuilder[E]) models.Handle[T] {
	if !models.Has[T](vb.app.rt.store) {
		panic(&models.LookupError{Type: reflect.TypeFor[T]()})
	}
	return models.Handle[T]{}
}

func vmName(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ.String()
}
