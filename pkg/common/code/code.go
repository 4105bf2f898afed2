package code

import "fmt"

// Code is a stable business error code carried in every response envelope.
// A bare Code is itself an error; WithErr/WithMsg attach detail while keeping
// the code comparable through errors.Is.
type Code int32

const (
	Success Code = 0
)

const (
	InternalErr Code = 10000 + iota
	ParamErr
	UnLogin
	LoginFormatErr
	InvalidToken
	RecordNotFound
	ReferencedErr
)

const (
	CreateDataErr Code = 11000 + iota
	QueryDataErr
	UpdateDataErr
	DeleteDataErr
	NotifyErr
	LookupErr
)

const (
	StockExistErr Code = 12000 + iota
	TemplateExistErr
)

var codeMsg = map[Code]string{
	Success:          "success",
	InternalErr:      "internal error",
	ParamErr:         "invalid param",
	UnLogin:          "not logged in",
	LoginFormatErr:   "login format error",
	InvalidToken:     "invalid token",
	RecordNotFound:   "record not found",
	ReferencedErr:    "record is referenced by other records",
	CreateDataErr:    "create data error",
	QueryDataErr:     "query data error",
	UpdateDataErr:    "update data error",
	DeleteDataErr:    "delete data error",
	NotifyErr:        "notify error",
	LookupErr:        "compound lookup error",
	StockExistErr:    "stock already exists",
	TemplateExistErr: "template already exists",
}

func (c Code) String() string {
	if msg, ok := codeMsg[c]; ok {
		return msg
	}
	return fmt.Sprintf("unknown code %d", int32(c))
}

func (c Code) Error() string {
	return c.String()
}

func (c Code) WithErr(err error) error {
	if err == nil {
		return c
	}
	return &codeError{code: c, msg: err.Error(), cause: err}
}

func (c Code) WithMsg(msg string) error {
	return &codeError{code: c, msg: msg}
}

func (c Code) WithMsgf(format string, args ...any) error {
	return &codeError{code: c, msg: fmt.Sprintf(format, args...)}
}

type codeError struct {
	code  Code
	msg   string
	cause error
}

func (e *codeError) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.msg)
}

func (e *codeError) Unwrap() error {
	return e.cause
}

func (e *codeError) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.code
}

// FromError maps any error to the code and message the envelope reports.
// Unrecognized errors become InternalErr with their own message.
func FromError(err error) (Code, string) {
	switch e := err.(type) {
	case nil:
		return Success, ""
	case Code:
		return e, e.String()
	case *codeError:
		return e.code, e.msg
	default:
		return InternalErr, err.Error()
	}
}
