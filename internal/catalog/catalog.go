package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Flow tells whether an operation moves oil into the station or out of it.
type Flow string

const (
	FlowIn  Flow = "in"
	FlowOut Flow = "out"
)

type Company struct {
	Name          string   `yaml:"name" json:"name"`
	Display       string   `yaml:"display" json:"display"`
	Key           string   `yaml:"key" json:"key"`
	Aliases       []string `yaml:"aliases" json:"aliases,omitempty"`
	NominatedOils []string `yaml:"nominated_oils" json:"nominated_oils"`
}

type Operation struct {
	Name    string `yaml:"name" json:"name"`
	Display string `yaml:"display" json:"display"`
	Flow    Flow   `yaml:"flow" json:"flow"`
}

type OilType struct {
	Name           string `yaml:"name" json:"name"`
	TransportLabel string `yaml:"transport_label" json:"transport_label"`
	Light          bool   `yaml:"light" json:"light"`
}

type Field struct {
	Name    string `yaml:"name" json:"name"`
	OilType string `yaml:"oil_type" json:"oil_type"`
}

type NominationColumn struct {
	Column  string `yaml:"column" json:"column"`
	Company string `yaml:"company" json:"company"`
	OilType string `yaml:"oil_type" json:"oil_type"`
}

// Catalog holds every label the report parser and writers know about.
type Catalog struct {
	Companies         []Company          `yaml:"companies" json:"companies"`
	Operations        []Operation        `yaml:"operations" json:"operations"`
	OilTypes          []OilType          `yaml:"oil_types" json:"oil_types"`
	Fields            []Field            `yaml:"fields" json:"fields"`
	NominationColumns []NominationColumn `yaml:"nomination_columns" json:"nomination_columns"`

	companies  map[string]int
	operations map[string]int
	oilTypes   map[string]int
	fields     map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file, falling back to the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	c.companies = make(map[string]int)
	c.operations = make(map[string]int)
	c.oilTypes = make(map[string]int)
	c.fields = make(map[string]int)

	if len(c.Companies) == 0 || len(c.Operations) == 0 || len(c.Fields) == 0 {
		return errors.New("catalog needs companies, operations and fields")
	}

	for i := range c.Companies {
		co := &c.Companies[i]
		if co.Display == "" {
			co.Display = co.Name
		}
		if co.Key == "" {
			co.Key = strings.ToLower(co.Display)
		}
		for _, label := range append([]string{co.Name}, co.Aliases...) {
			if err := put(c.companies, label, i, "company"); err != nil {
				return err
			}
		}
	}
	for i := range c.Operations {
		op := &c.Operations[i]
		if op.Display == "" {
			op.Display = op.Name
		}
		if op.Flow != FlowIn && op.Flow != FlowOut {
			return fmt.Errorf("operation %q: flow must be %q or %q", op.Name, FlowIn, FlowOut)
		}
		if err := put(c.operations, op.Name, i, "operation"); err != nil {
			return err
		}
	}
	for i := range c.OilTypes {
		ot := &c.OilTypes[i]
		if ot.TransportLabel == "" {
			ot.TransportLabel = ot.Name
		}
		if err := put(c.oilTypes, ot.Name, i, "oil type"); err != nil {
			return err
		}
	}
	for i, f := range c.Fields {
		if _, ok := c.oilTypes[Normalize(f.OilType)]; !ok {
			return fmt.Errorf("field %q: unknown oil type %q", f.Name, f.OilType)
		}
		if err := put(c.fields, f.Name, i, "field"); err != nil {
			return err
		}
	}
	for _, co := range c.Companies {
		for _, oil := range co.NominatedOils {
			if _, ok := c.oilTypes[Normalize(oil)]; !ok {
				return fmt.Errorf("company %q: unknown nominated oil %q", co.Name, oil)
			}
		}
	}
	for _, nc := range c.NominationColumns {
		if _, ok := c.companies[Normalize(nc.Company)]; !ok {
			return fmt.Errorf("nomination column %s: unknown company %q", nc.Column, nc.Company)
		}
		if _, ok := c.oilTypes[Normalize(nc.OilType)]; !ok {
			return fmt.Errorf("nomination column %s: unknown oil type %q", nc.Column, nc.OilType)
		}
	}
	return nil
}

func put(m map[string]int, label string, i int, kind string) error {
	key := Normalize(label)
	if key == "" {
		return fmt.Errorf("empty %s name", kind)
	}
	if _, dup := m[key]; dup {
		return fmt.Errorf("duplicate %s %q", kind, label)
	}
	m[key] = i
	return nil
}

// Normalize upper-cases a label and collapses its inner whitespace.
func Normalize(label string) string {
	return strings.ToUpper(strings.Join(strings.Fields(label), " "))
}

func (c *Catalog) Company(label string) (Company, bool) {
	i, ok := c.companies[Normalize(label)]
	if !ok {
		return Company{}, false
	}
	return c.Companies[i], true
}

func (c *Catalog) Operation(label string) (Operation, bool) {
	i, ok := c.operations[Normalize(label)]
	if !ok {
		return Operation{}, false
	}
	return c.Operations[i], true
}

func (c *Catalog) OilType(label string) (OilType, bool) {
	i, ok := c.oilTypes[Normalize(label)]
	if !ok {
		return OilType{}, false
	}
	return c.OilTypes[i], true
}

func (c *Catalog) Field(label string) (Field, bool) {
	i, ok := c.fields[Normalize(label)]
	if !ok {
		return Field{}, false
	}
	return c.Fields[i], true
}

// OilTypeOf returns the oil type a field produces, or "" for fields outside the catalog.
func (c *Catalog) OilTypeOf(field string) string {
	f, ok := c.Field(field)
	if !ok {
		return ""
	}
	ot, _ := c.OilType(f.OilType)
	return ot.Name
}

// FlowOf returns the direction of an operation, or "" when unknown.
func (c *Catalog) FlowOf(operation string) Flow {
	op, ok := c.Operation(operation)
	if !ok {
		return ""
	}
	return op.Flow
}

// Operations names of the given flow, in catalog order.
func (c *Catalog) OperationsWithFlow(flow Flow) []string {
	var names []string
	for _, op := range c.Operations {
		if op.Flow == flow {
			names = append(names, op.Name)
		}
	}
	return names
}
