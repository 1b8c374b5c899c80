package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config 是独立 Pipeline 配置文件的结构（支持 YAML/JSON）。
type Config struct {
	Pipeline Spec `yaml:"pipeline" json:"pipeline"`
}

// Spec 描述 Node 链；Nodes 为空时由调用方使用默认顺序。
type Spec struct {
	Name  string       `yaml:"name" json:"name"`
	Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
}

// NodeConfig 是单个 Node 的配置，Config 中的键覆盖全局取值。
type NodeConfig struct {
	Type   string                 `yaml:"type" json:"type"`     // ingest.normalize / feature.window / sample.negative 等
	Config map[string]interface{} `yaml:"config" json:"config"` // Node 特定配置
}

// LoadFile 按扩展名选择解析器：.json 使用 JSON，其余按 YAML 解析。
func LoadFile(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadFromJSON(path)
	}
	return LoadFromYAML(path)
}

// LoadFromYAML 从 YAML 文件加载 Pipeline 配置。
func LoadFromYAML(path string) (*Config, error) {
	return load(path, "yaml", yaml.Unmarshal)
}

// LoadFromJSON 从 JSON 文件加载 Pipeline 配置。
func LoadFromJSON(path string) (*Config, error) {
	return load(path, "json", json.Unmarshal)
}

func load(path, format string, unmarshal func([]byte, interface{}) error) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var cfg Config
	if err := unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return &cfg, nil
}

// Build 根据配置按顺序构建 Pipeline。
// 注意：factory 在独立的 config 包中注册，避免循环依赖。
func (s *Spec) Build(factory *NodeFactory) (*Pipeline, error) {
	nodes := make([]Node, 0, len(s.Nodes))
	for i, nc := range s.Nodes {
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("build node #%d (%s): %w", i, nc.Type, err)
		}
		nodes = append(nodes, node)
	}
	return &Pipeline{Nodes: nodes}, nil
}

// NodeBuilder 根据节点配置构建 Node。
type NodeBuilder func(map[string]interface{}) (Node, error)

// NodeFactory 用于根据配置构建 Node 实例。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{builders: make(map[string]NodeBuilder)}
}

// Register 注册 Node 构建器，同名覆盖。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Types 返回已注册的 Node 类型（排序），用于错误提示。
func (f *NodeFactory) Types() []string {
	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build 根据类型和配置构建 Node。
func (f *NodeFactory) Build(nodeType string, config map[string]interface{}) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type %q (supported: %s)", nodeType, strings.Join(f.Types(), ", "))
	}
	if config == nil {
		config = map[string]interface{}{}
	}
	return builder(config)
}
