package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (StateTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("adjust_total", createAdjustTotal)
	registry.Register("scale_total", createScaleTotal)
	registry.Register("set_invoice", createSetInvoiceRegistration)
	registry.Register("set_employees", createSetEmployees)
	registry.Register("set_capital", createSetCapital)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (StateTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms, sorted.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "adjust_total:field=expenses,amount=3000000"
func (r *TransformRegistry) ParseTransformSpec(spec string) (StateTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// ParseTransformSpecs parses several specifications, keeping their order.
func (r *TransformRegistry) ParseTransformSpecs(specs []string) ([]StateTransform, error) {
	out := make([]StateTransform, 0, len(specs))
	for _, spec := range specs {
		t, err := r.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func requireParam(transform string, params map[string]string, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	return v, nil
}

func parseDecimal(key, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.ReplaceAll(raw, "_", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func createAdjustTotal(params map[string]string) (StateTransform, error) {
	field, err := requireParam("adjust_total", params, "field")
	if err != nil {
		return nil, err
	}
	raw, err := requireParam("adjust_total", params, "amount")
	if err != nil {
		return nil, err
	}
	amount, err := parseDecimal("amount", raw)
	if err != nil {
		return nil, err
	}
	return &AdjustTotal{Field: field, Amount: amount}, nil
}

func createScaleTotal(params map[string]string) (StateTransform, error) {
	field, err := requireParam("scale_total", params, "field")
	if err != nil {
		return nil, err
	}
	raw, err := requireParam("scale_total", params, "factor")
	if err != nil {
		return nil, err
	}
	factor, err := parseDecimal("factor", raw)
	if err != nil {
		return nil, err
	}
	return &ScaleTotal{Field: field, Factor: factor}, nil
}

func createSetInvoiceRegistration(params map[string]string) (StateTransform, error) {
	raw, err := requireParam("set_invoice", params, "registered")
	if err != nil {
		return nil, err
	}
	registered, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid registered value: %w", err)
	}
	return &SetInvoiceRegistration{Registered: registered}, nil
}

func createSetEmployees(params map[string]string) (StateTransform, error) {
	raw, err := requireParam("set_employees", params, "count")
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid count value: %w", err)
	}
	return &SetEmployees{Count: count}, nil
}

func createSetCapital(params map[string]string) (StateTransform, error) {
	raw, err := requireParam("set_capital", params, "amount")
	if err != nil {
		return nil, err
	}
	amount, err := parseDecimal("amount", raw)
	if err != nil {
		return nil, err
	}
	return &SetCapital{Amount: amount}, nil
}
