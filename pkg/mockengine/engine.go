package mockengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/getmockd/gqlbridge/pkg/client"
	"github.com/getmockd/gqlbridge/pkg/logging"
	"github.com/getmockd/gqlbridge/pkg/operation"
)

// Errors returned when building an engine.
var (
	ErrNoSchema      = errors.New("schema or schemaFile is required")
	ErrInvalidSchema = errors.New("invalid schema")
	ErrInvalidDelay  = errors.New("invalid resolver delay")
)

// argsPattern matches {{args.name}} placeholders.
var argsPattern = regexp.MustCompile(`\{\{args\.([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Engine executes operations against configured resolvers.
type Engine struct {
	schema    *ast.Schema
	resolvers map[string][]resolver
	logger    *slog.Logger
}

type resolver struct {
	ResolverConfig
	delay time.Duration
}

// New builds an engine from cfg.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	sdl, name := cfg.Schema, "schema"
	if sdl == "" {
		if cfg.SchemaFile == "" {
			return nil, ErrNoSchema
		}
		data, err := os.ReadFile(cfg.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", cfg.SchemaFile, err)
		}
		sdl, name = string(data), cfg.SchemaFile
	}

	schema, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	e := &Engine{
		schema:    schema,
		resolvers: make(map[string][]resolver, len(cfg.Resolvers)),
		logger:    logging.Component(logger, "mockengine"),
	}
	for path, configs := range cfg.Resolvers {
		for _, rc := range configs {
			r := resolver{ResolverConfig: rc}
			if rc.Delay != "" {
				d, err := time.ParseDuration(rc.Delay)
				if err != nil {
					return nil, fmt.Errorf("%w for %s: %v", ErrInvalidDelay, path, err)
				}
				r.delay = d
			}
			e.resolvers[path] = append(e.resolvers[path], r)
		}
	}
	return e, nil
}

// Exchange returns the engine as a terminal client exchange. Each operation
// runs concurrently; a teardown cancels only the operation it was derived from.
func (e *Engine) Exchange() client.Exchange {
	return func(in client.ExchangeInput) client.ExchangeIO {
		return func(ops <-chan *operation.Operation) <-chan *operation.Result {
			out := make(chan *operation.Result)
			go newRunner(e, out).run(ops)
			return out
		}
	}
}

// runner serves one operation stream. inflight holds an entry for each
// operation still executing.
type runner struct {
	engine *Engine
	out    chan<- *operation.Result
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[*operation.Operation]*flight
}

type flight struct {
	cancel context.CancelFunc
}

func newRunner(e *Engine, out chan<- *operation.Result) *runner {
	return &runner{
		engine:   e,
		out:      out,
		inflight: make(map[*operation.Operation]*flight),
	}
}

func (r *runner) run(ops <-chan *operation.Operation) {
	defer close(r.out)

	for op := range ops {
		if op.Kind == operation.KindTeardown {
			r.teardown(op)
			continue
		}
		r.start(op)
	}

	// Operations still running when the stream ends are abandoned.
	r.mu.Lock()
	for _, f := range r.inflight {
		f.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *runner) start(op *operation.Operation) {
	r.engine.logger.Debug("executing operation", "kind", op.Kind, "operationName", op.OperationName)

	ctx, cancel := context.WithCancel(context.Background())
	f := &flight{cancel: cancel}
	r.mu.Lock()
	if prev, ok := r.inflight[op]; ok {
		// Re-dispatching an operation restarts it.
		prev.cancel()
	}
	r.inflight[op] = f
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.finish(op, f)
		for _, res := range r.engine.Execute(ctx, op) {
			select {
			case r.out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// teardown cancels the operation td was derived from. Other operations with
// the same key keep running.
func (r *runner) teardown(td *operation.Operation) {
	r.engine.logger.Debug("teardown", "key", td.Key, "operationName", td.OperationName)
	target := td.Origin()
	if target == nil {
		return
	}
	r.mu.Lock()
	f, ok := r.inflight[target]
	delete(r.inflight, target)
	r.mu.Unlock()
	if ok {
		f.cancel()
	}
}

func (r *runner) finish(op *operation.Operation, f *flight) {
	f.cancel()
	r.mu.Lock()
	if r.inflight[op] == f {
		delete(r.inflight, op)
	}
	r.mu.Unlock()
}

func (r *runner) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}

// Execute runs op and returns its results. Subscriptions with configured
// events produce one result per event; everything else produces one result.
// A cancelled ctx yields no results.
func (e *Engine) Execute(ctx context.Context, op *operation.Operation) []*operation.Result {
	doc, errs := gqlparser.LoadQuery(e.schema, op.Query)
	if len(errs) > 0 {
		return []*operation.Result{{Operation: op, Error: graphQLErrors(errs)}}
	}

	def := doc.Operations.ForName(op.OperationName)
	if def == nil && len(doc.Operations) > 0 {
		def = doc.Operations[0]
	}
	if def == nil {
		return []*operation.Result{{
			Operation: op,
			Error:     operation.NewGraphQLError(operation.GraphQLError{Message: "no operation found in query"}),
		}}
	}

	root := e.rootType(def.Operation)
	calls := e.plan(root, def.SelectionSet, op.Variables)

	var delay time.Duration
	for _, c := range calls {
		if c.resolver != nil {
			delay = max(delay, c.resolver.delay)
			if c.resolver.NetworkError != "" {
				if !sleep(ctx, delay) {
					return nil
				}
				return []*operation.Result{{Operation: op, Error: operation.NewNetworkError(errors.New(c.resolver.NetworkError))}}
			}
		}
	}
	if !sleep(ctx, delay) {
		return nil
	}

	if def.Operation == ast.Subscription {
		if results := e.stream(op, calls); results != nil {
			return results
		}
	}

	data := make(map[string]any, len(calls))
	var gqlErrs []operation.GraphQLError
	for _, c := range calls {
		value, gqlErr := c.resolve()
		data[c.alias] = value
		if gqlErr != nil {
			gqlErrs = append(gqlErrs, *gqlErr)
		}
	}

	res := &operation.Result{Operation: op, Data: data}
	if len(gqlErrs) > 0 {
		res.Error = operation.NewGraphQLError(gqlErrs...)
	}
	return []*operation.Result{res}
}

// stream expands the first subscription field with events into one result per event.
func (e *Engine) stream(op *operation.Operation, calls []call) []*operation.Result {
	for _, c := range calls {
		if c.resolver == nil || len(c.resolver.Events) == 0 {
			continue
		}
		results := make([]*operation.Result, len(c.resolver.Events))
		for i, ev := range c.resolver.Events {
			results[i] = &operation.Result{
				Operation: op,
				Data:      map[string]any{c.alias: project(substitute(ev, c.args), c.field)},
				HasNext:   i < len(c.resolver.Events)-1,
			}
		}
		return results
	}
	return nil
}

func (e *Engine) rootType(kind ast.Operation) string {
	switch kind {
	case ast.Mutation:
		if e.schema.Mutation != nil {
			return e.schema.Mutation.Name
		}
		return "Mutation"
	case ast.Subscription:
		if e.schema.Subscription != nil {
			return e.schema.Subscription.Name
		}
		return "Subscription"
	default:
		if e.schema.Query != nil {
			return e.schema.Query.Name
		}
		return "Query"
	}
}

// call is one resolved root field.
type call struct {
	root     string
	field    *ast.Field
	alias    string
	name     string
	args     map[string]any
	resolver *resolver
}

func (e *Engine) plan(root string, selections ast.SelectionSet, variables map[string]any) []call {
	var calls []call
	for _, sel := range selections {
		field, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		alias := field.Alias
		if alias == "" {
			alias = field.Name
		}
		args := field.ArgumentMap(variables)
		calls = append(calls, call{
			root:     root,
			field:    field,
			alias:    alias,
			name:     field.Name,
			args:     args,
			resolver: e.findResolver(root+"."+field.Name, args),
		})
	}
	return calls
}

func (e *Engine) findResolver(path string, args map[string]any) *resolver {
	candidates := e.resolvers[path]
	for i := range candidates {
		if matchArgs(candidates[i].Match, args) {
			return &candidates[i]
		}
	}
	return nil
}

func (c call) resolve() (any, *operation.GraphQLError) {
	if c.name == "__typename" {
		return c.root, nil
	}
	if c.resolver == nil {
		return nil, nil
	}
	if c.resolver.Error != nil {
		return nil, &operation.GraphQLError{
			Message:    c.resolver.Error.Message,
			Path:       []any{c.alias},
			Extensions: c.resolver.Error.Extensions,
		}
	}
	return project(substitute(c.resolver.Response, c.args), c.field), nil
}

// project trims a resolved value down to the fields the selection set asks for,
// renaming aliased fields.
func project(value any, field *ast.Field) any {
	if field == nil || len(field.SelectionSet) == 0 {
		return value
	}
	typeName := ""
	if field.Definition != nil && field.Definition.Type != nil {
		typeName = field.Definition.Type.Name()
	}
	return projectSet(value, field.SelectionSet, typeName)
}

func projectSet(value any, set ast.SelectionSet, typeName string) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = projectSet(item, set, typeName)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(set))
		collect(v, set, typeName, out)
		return out
	default:
		return value
	}
}

func collect(src map[string]any, set ast.SelectionSet, typeName string, out map[string]any) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			key := s.Alias
			if key == "" {
				key = s.Name
			}
			if s.Name == "__typename" {
				if t, ok := src["__typename"]; ok {
					out[key] = t
				} else {
					out[key] = typeName
				}
				continue
			}
			out[key] = project(src[s.Name], s)
		case *ast.InlineFragment:
			collect(src, s.SelectionSet, typeName, out)
		case *ast.FragmentSpread:
			if s.Definition != nil {
				collect(src, s.Definition.SelectionSet, typeName, out)
			}
		}
	}
}

func matchArgs(want, got map[string]any) bool {
	for key, expected := range want {
		actual, ok := got[key]
		if !ok {
			return false
		}
		// Compare textually so 1, int64(1) and "1" from YAML agree.
		if fmt.Sprint(expected) != fmt.Sprint(actual) {
			return false
		}
	}
	return true
}

// substitute replaces {{args.name}} placeholders in strings, recursively.
func substitute(value any, args map[string]any) any {
	switch v := value.(type) {
	case string:
		return argsPattern.ReplaceAllStringFunc(v, func(m string) string {
			name := argsPattern.FindStringSubmatch(m)[1]
			if arg, ok := args[name]; ok {
				return fmt.Sprint(arg)
			}
			return m
		})
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = substitute(child, args)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = substitute(child, args)
		}
		return out
	default:
		return value
	}
}

func graphQLErrors(errs gqlerror.List) *operation.CombinedError {
	out := make([]operation.GraphQLError, 0, len(errs))
	for _, err := range errs {
		ge := operation.GraphQLError{Message: err.Message, Extensions: err.Extensions}
		for _, p := range err.Path {
			ge.Path = append(ge.Path, p)
		}
		out = append(out, ge)
	}
	return operation.NewGraphQLError(out...)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
