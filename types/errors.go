package types

import "fmt"

// CodespaceType reserves an error code namespace per module.
type CodespaceType uint16

// CodeType is a module-local error code.
type CodeType uint16

const (
	CodespaceRoot     CodespaceType = 1
	CodespaceGov      CodespaceType = 2
	CodespaceStake    CodespaceType = 3
	CodespaceTreasury CodespaceType = 4

	CodeOK             CodeType = 0
	CodeInternal       CodeType = 1
	CodeUnknownRequest CodeType = 2
	CodeInvalidAddress CodeType = 3
)

// Error is the typed error returned by every module operation. A
// precondition failure carries the module codespace and a stable code
// so callers can branch without string matching.
type Error interface {
	error

	Code() CodeType
	Codespace() CodespaceType
}

// NewError constructs an Error with a formatted message.
func NewError(codespace CodespaceType, code CodeType, format string, args ...interface{}) Error {
	return &sdkError{
		codespace: codespace,
		code:      code,
		msg:       fmt.Sprintf(format, args...),
	}
}

type sdkError struct {
	codespace CodespaceType
	code      CodeType
	msg       string
}

func (err *sdkError) Error() string {
	return fmt.Sprintf("codespace %d code %d: %s", err.codespace, err.code, err.msg)
}

func (err *sdkError) Code() CodeType           { return err.code }
func (err *sdkError) Codespace() CodespaceType { return err.codespace }

// ErrUnknownRequest wraps a malformed caller request.
func ErrUnknownRequest(msg string) Error {
	return NewError(CodespaceRoot, CodeUnknownRequest, msg)
}

// ErrInvalidAddress flags a missing or malformed account address.
func ErrInvalidAddress(msg string) Error {
	return NewError(CodespaceRoot, CodeInvalidAddress, msg)
}

// ErrInternal flags a failure that is not a caller precondition.
func ErrInternal(msg string) Error {
	return NewError(CodespaceRoot, CodeInternal, msg)
}

// CodeOf extracts the module error code, or CodeInternal for plain errors.
func CodeOf(err error) CodeType {
	if err == nil {
		return CodeOK
	}
	if sdkErr, ok := err.(Error); ok {
		return sdkErr.Code()
	}
	return CodeInternal
}
