package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - 目录加载错误：DATA_LOAD
//   - 向量空间构建错误：INVALID_INPUT
//   - 存储错误：NOT_FOUND, NOT_SUPPORTED
//   - 引擎错误：UNAVAILABLE（尚未加载快照）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "DATA_LOAD"）
	Message string // 错误消息
	Module  string // 模块名称（如 "catalog", "vector", "store"）
	Cause   error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is 让 errors.Is 按 Module + Code 匹配，而不是指针相等。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
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
func WrapDomainError(module, code, message string, cause error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
	ErrorCodeDataLoad      = "DATA_LOAD"      // 目录数据无法解析
)

// 模块名称常量
const (
	ModuleCatalog = "catalog" // 目录模块
	ModuleVector  = "vector"  // 向量空间模块
	ModuleRecall  = "recall"  // 召回/聚合模块
	ModuleStore   = "store"   // 存储模块
	ModuleEngine  = "engine"  // 引擎模块
	ModuleConfig  = "config"  // 配置模块
)

// ErrDataLoad 是目录无法被解析为 MovieRecord 时的哨兵错误，
// 可用 errors.Is(err, ErrDataLoad) 判断。
var ErrDataLoad = NewDomainError(ModuleCatalog, ErrorCodeDataLoad, "catalog: data load failed")

// NewDataLoadError 创建一个 DATA_LOAD 错误。
func NewDataLoadError(message string, cause error) *DomainError {
	return WrapDomainError(ModuleCatalog, ErrorCodeDataLoad, message, cause)
}

// 通用错误检查函数

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

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsDataLoad 检查错误是否为 DATA_LOAD
func IsDataLoad(err error) bool { return hasCode(err, ErrorCodeDataLoad) }
