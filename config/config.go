// Package config 加载预处理配置并构建默认 Pipeline。
package config

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pipeline"
	"github.com/rushteam/recprep/store"
)

// DefaultHistoryLen 是未配置 history_len 时的历史窗口长度
const DefaultHistoryLen = 128

// Config 是预处理任务的完整配置。
type Config struct {
	TimeRange int64 `yaml:"time_range"` // 时间桶宽度（毫秒）
	KM        int64 `yaml:"k_m"`        // 中期窗口（毫秒）
	KS        int64 `yaml:"k_s"`        // 短期窗口（毫秒）

	HistoryLen      int `yaml:"history_len"`
	TrainNumSamples int `yaml:"train_num_samples"`
	ValidNumSamples int `yaml:"valid_num_samples"`
	TestNumSamples  int `yaml:"test_num_samples"`

	Seed             uint64 `yaml:"seed"`
	DataPreprocessed bool   `yaml:"data_preprocessed"`
	Workers          int    `yaml:"workers"`
	SampleCacheSize  int    `yaml:"sample_cache_size"`

	Filter FilterConfig  `yaml:"filter"`
	Input  InputConfig   `yaml:"input"`
	Output OutputConfig  `yaml:"output"`
	Store  store.Options `yaml:"store"`
	Log    LogConfig     `yaml:"log"`

	Pipeline pipeline.Spec `yaml:"pipeline"`
}

type FilterConfig struct {
	Expr      string `yaml:"expr"`
	UserLimit int    `yaml:"user_limit"`
	ItemLimit int    `yaml:"item_limit"`
}

type InputConfig struct {
	Reviews string `yaml:"reviews"`
	Meta    string `yaml:"meta"`
}

type OutputConfig struct {
	Dataset string `yaml:"dataset"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

// Load 读取 YAML 配置，填充默认值并校验。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "read file", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 内容，填充默认值并校验。
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "parse yaml", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults 为未设置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.HistoryLen == 0 {
		c.HistoryLen = DefaultHistoryLen
	}
	if c.Output.Dataset == "" {
		c.Output.Dataset = "dataset"
	}
	if c.Store.Type == "" {
		c.Store.Type = "file"
	}
	if c.Store.Type == "file" && c.Store.Dir == "" {
		c.Store.Dir = "artifacts"
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
}

func invalid(format string, args ...interface{}) error {
	return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	switch {
	case c.TimeRange <= 0:
		return invalid("time_range must be > 0, got %d", c.TimeRange)
	case c.KM < 0 || c.KS < 0:
		return invalid("k_m and k_s must be >= 0")
	case c.KS > c.KM:
		return invalid("k_s (%d) must not exceed k_m (%d)", c.KS, c.KM)
	case c.HistoryLen <= 0:
		return invalid("history_len must be > 0, got %d", c.HistoryLen)
	case c.TrainNumSamples < 0 || c.ValidNumSamples < 0 || c.TestNumSamples < 0:
		return invalid("num_samples must be >= 0")
	case c.Workers < 0:
		return invalid("workers must be >= 0")
	case c.SampleCacheSize < 0:
		return invalid("sample_cache_size must be >= 0")
	case c.Filter.UserLimit < 0 || c.Filter.ItemLimit < 0:
		return invalid("filter limits must be >= 0")
	}
	return nil
}

// NumSamples 返回各划分的负样本个数
func (c *Config) NumSamples() map[core.SplitKind]int {
	return map[core.SplitKind]int{
		core.SplitTrain: c.TrainNumSamples,
		core.SplitValid: c.ValidNumSamples,
		core.SplitTest:  c.TestNumSamples,
	}
}

// Fingerprint 是影响产物内容的配置项的哈希，用于判断已持久化的产物能否复用。
// workers、日志和存储位置不参与计算。
func (c *Config) Fingerprint() string {
	h := xxhash.New()
	var buf [8]byte
	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	putStr := func(s string) {
		putInt(int64(len(s)))
		_, _ = h.WriteString(s)
	}

	putInt(c.TimeRange)
	putInt(c.KM)
	putInt(c.KS)
	putInt(int64(c.HistoryLen))
	putInt(int64(c.TrainNumSamples))
	putInt(int64(c.ValidNumSamples))
	putInt(int64(c.TestNumSamples))
	putInt(int64(c.Seed))
	// 开启缓存时随机流按缓存 key 派生，结果与关闭时不同
	putInt(int64(boolInt(c.SampleCacheSize > 0)))
	putStr(c.Filter.Expr)
	putInt(int64(c.Filter.UserLimit))
	putInt(int64(c.Filter.ItemLimit))
	putStr(c.Input.Reviews)
	putStr(c.Input.Meta)
	for _, n := range c.Pipeline.Nodes {
		putStr(n.Type)
		putStr(canonicalNodeConfig(n.Config))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// canonicalNodeConfig 把节点级覆盖序列化为键有序的 JSON，workers 不影响产物，不参与计算。
func canonicalNodeConfig(cfg map[string]interface{}) string {
	if len(cfg) == 0 {
		return ""
	}
	m := make(map[string]interface{}, len(cfg))
	for k, v := range cfg {
		if k == "workers" {
			continue
		}
		m[k] = v
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("%v", m)
	}
	return string(data)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
