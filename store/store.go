package store

import (
	"fmt"

	"github.com/rushteam/recprep/core"
)

// 注意：此包只包含实现，接口定义在 core 包。
//
// 示例：
//   var s core.Store = NewMemoryStore()

// Options 描述如何打开一个存储后端。
type Options struct {
	Type string `yaml:"type" json:"type"` // memory / file / sqlite / redis
	Dir  string `yaml:"dir" json:"dir"`   // file
	DSN  string `yaml:"dsn" json:"dsn"`   // sqlite
	Addr string `yaml:"addr" json:"addr"` // redis
	DB   int    `yaml:"db" json:"db"`     // redis
}

// Open 按 Options 打开存储后端。
func Open(opts Options) (core.Store, error) {
	switch opts.Type {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(opts.DSN)
	case "redis":
		return NewRedisStore(opts.Addr, opts.DB)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
			fmt.Sprintf("unknown store type %q", opts.Type))
	}
}
