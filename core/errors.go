package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有阶段的错误都使用此类型，Module 标识出错的阶段
//   - 提供错误代码（Code）和消息（Message）
//   - 支持 errors.Is / errors.As 与错误检查函数（IsXXX）
//
// 使用场景：
//   - Ingest 错误：INVALID_INPUT（缺少必需字段）
//   - Dataset 错误：SHAPE_MISMATCH（不等长的历史或负样本）
//   - Store 错误：NOT_FOUND
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "ingest", "dataset", "store"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Module + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Module + ": " + e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is 按 Module + Code 匹配，便于 errors.Is(err, ErrStoreNotFound)。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效（缺少字段、格式错误）
	ErrorCodeInvalidConfig = "INVALID_CONFIG" // 配置无效
	ErrorCodeShapeMismatch = "SHAPE_MISMATCH" // 行形状不一致
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleIngest   = "ingest"
	ModuleFilter   = "filter"
	ModuleEncode   = "encode"
	ModuleFeature  = "feature"
	ModuleSample   = "sample"
	ModuleSplit    = "split"
	ModuleDataset  = "dataset"
	ModuleStore    = "store"
	ModuleConfig   = "config"
	ModuleArtifact = "artifact"
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsInvalidConfig 检查错误是否为 INVALID_CONFIG
func IsInvalidConfig(err error) bool { return hasCode(err, ErrorCodeInvalidConfig) }

// IsShapeMismatch 检查错误是否为 SHAPE_MISMATCH
func IsShapeMismatch(err error) bool { return hasCode(err, ErrorCodeShapeMismatch) }
