package echoui

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 7860
	// DefaultPortScan extra ports are tried after DefaultPort (7860-7959).
	DefaultPortScan = 99
)

//go:embed plan.yaml
var defaultPlan []byte

// Variant is one launch configuration.
type Variant struct {
	Name      string `yaml:"name"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	// PortScan is how many ports after Port may be tried when it is taken.
	PortScan  int    `yaml:"port_scan"`
	Quiet     bool   `yaml:"quiet"`
	ShowError bool   `yaml:"show_error"`
	Docs      bool   `yaml:"docs"`
}

// UnmarshalYAML fills omitted fields with plain-launch defaults.
func (v *Variant) UnmarshalYAML(node *yaml.Node) error {
	type plain Variant
	p := plain(DefaultVariant(""))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*v = Variant(p)
	return nil
}

// DefaultVariant is a launch with no overrides.
func DefaultVariant(name string) Variant {
	return Variant{Name: name, Host: DefaultHost, Port: DefaultPort, PortScan: DefaultPortScan, ShowError: true, Docs: true}
}

// StepName implements fallback.Named.
func (v Variant) StepName() string { return v.Name }

// Addr is the first listen address tried.
func (v Variant) Addr() string { return v.addr(v.Port) }

func (v Variant) addr(port int) string { return net.JoinHostPort(v.Host, strconv.Itoa(port)) }

// Addrs lists every address Launch may try, in order.
func (v Variant) Addrs() []string {
	if v.Port == 0 {
		return []string{v.Addr()}
	}
	last := min(v.Port+max(v.PortScan, 0), 65535)
	addrs := make([]string, 0, last-v.Port+1)
	for p := v.Port; p <= last; p++ {
		addrs = append(addrs, v.addr(p))
	}
	return addrs
}

// URL is the address a browser should open.
func (v Variant) URL() string { return "http://" + v.Addr() }

// ParsePlan decodes a YAML list of variants.
func ParsePlan(data []byte) ([]Variant, error) {
	var plan []Variant
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse launch plan: %w", err)
	}
	if len(plan) == 0 {
		return nil, errors.New("launch plan is empty")
	}
	for i, v := range plan {
		if v.Name == "" {
			return nil, fmt.Errorf("launch plan entry %d has no name", i+1)
		}
		if v.Port < 0 || v.Port > 65535 {
			return nil, fmt.Errorf("%s: port %d out of range", v.Name, v.Port)
		}
		if v.PortScan < 0 {
			return nil, fmt.Errorf("%s: port_scan %d is negative", v.Name, v.PortScan)
		}
	}
	return plan, nil
}

// LoadPlan reads the plan at path, or the built-in plan when path is empty.
func LoadPlan(path string) ([]Variant, error) {
	if path == "" {
		return ParsePlan(defaultPlan)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read launch plan: %w", err)
	}
	return ParsePlan(data)
}
