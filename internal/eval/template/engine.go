package template

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/aescanero/dago-node-render/pkg/controlflow"
	"github.com/aymerick/raymond"
	"go.uber.org/zap"
)

// DefaultCacheSize is the number of compiled templates kept by default
const DefaultCacheSize = 256

// Engine renders Handlebars templates
type Engine struct {
	helpers   map[string]interface{}
	cache     map[string]*raymond.Template
	cacheSize int
	logger    *zap.Logger
	mu        sync.RWMutex
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCacheSize bounds the compiled template cache. Zero or less disables caching.
func WithCacheSize(size int) Option {
	return func(e *Engine) {
		e.cacheSize = size
	}
}

// NewEngine creates a new template engine with the built-in and
// control-flow helpers registered
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		helpers:   make(map[string]interface{}),
		cache:     make(map[string]*raymond.Template),
		cacheSize: DefaultCacheSize,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(engine)
	}

	// Register custom helpers
	engine.RegisterHelpers(builtinHelpers())
	controlflow.Install(engine)

	return engine
}

// RegisterHelper registers a helper for every template rendered by the
// engine. A helper registered under an existing name replaces it.
//
// It panics if helper is not a function returning exactly one value.
func (e *Engine) RegisterHelper(name string, helper interface{}) {
	if err := validateHelper(helper); err != nil {
		panic(fmt.Sprintf("invalid helper %q: %v", name, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	_, replaced := e.helpers[name]
	e.helpers[name] = helper

	// Compiled templates carry their own helper table
	e.cache = make(map[string]*raymond.Template)

	e.logger.Debug("helper registered",
		zap.String("helper", name),
		zap.Bool("replaced", replaced),
	)
}

// RegisterHelpers registers several helpers
func (e *Engine) RegisterHelpers(helpers map[string]interface{}) {
	for name, helper := range helpers {
		e.RegisterHelper(name, helper)
	}
}

// Helpers returns the sorted names of the registered helpers
func (e *Engine) Helpers() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.helpers))
	for name := range e.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render renders a template with the given data
func (e *Engine) Render(templateStr string, data interface{}) (string, error) {
	// Get or compile template
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to compile template: %w", err)
	}

	// Execute the template
	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(templateStr string) (*raymond.Template, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if tmpl, ok := e.cache[templateStr]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	// Compile the template (write lock)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tmpl, ok := e.cache[templateStr]; ok {
		return tmpl, nil
	}

	tmpl, err := e.compile(templateStr)
	if err != nil {
		return nil, err
	}

	if e.cacheSize <= 0 {
		return tmpl, nil
	}

	if len(e.cache) >= e.cacheSize {
		e.logger.Debug("template cache full, clearing", zap.Int("size", len(e.cache)))
		e.cache = make(map[string]*raymond.Template)
	}

	// Cache the template
	e.cache[templateStr] = tmpl

	return tmpl, nil
}

// compile parses a template and binds the engine helpers to it. Callers
// hold e.mu.
func (e *Engine) compile(templateStr string) (*raymond.Template, error) {
	tmpl, err := raymond.Parse(controlflow.Preprocess(templateStr))
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	tmpl.RegisterHelpers(e.helpers)

	e.logger.Debug("template compiled", zap.Int("length", len(templateStr)))

	return tmpl, nil
}

// ValidateTemplate validates a template without rendering it
func (e *Engine) ValidateTemplate(templateStr string) error {
	_, err := raymond.Parse(controlflow.Preprocess(templateStr))
	return err
}

// ClearCache clears the compiled template cache
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*raymond.Template)
}

// validateHelper mirrors raymond's own check so a bad helper fails at
// registration instead of at the first compile
func validateHelper(helper interface{}) error {
	t := reflect.TypeOf(helper)
	if t == nil || t.Kind() != reflect.Func {
		return fmt.Errorf("helper must be a function, got %T", helper)
	}
	if t.NumOut() != 1 {
		return fmt.Errorf("helper must return exactly one value, got %d", t.NumOut())
	}
	return nil
}
