package rpc

import (
	"errors"
	"fmt"
	"io"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dshills/wordcount/internal/host"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// ErrInvalidParams is returned when a message's parameters cannot be used.
var ErrInvalidParams = errors.New("invalid params")

// queryError maps the error of a call into the editor to the host error
// vocabulary.
func queryError(op string, arg int, err error) error {
	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case CodeOffsetOutOfRange:
			return host.NewQueryError(op, arg, host.ErrOffsetOutOfRange)
		case CodeLineOutOfRange:
			return host.NewQueryError(op, arg, host.ErrLineOutOfRange)
		default:
			return host.NewQueryError(op, arg, fmt.Errorf("%w: %s", host.ErrIO, rpcErr.Message))
		}
	}
	if isClosed(err) {
		return host.NewQueryError(op, arg, transportError(err))
	}
	return host.NewQueryError(op, arg, err)
}

// transportError wraps err so it matches host.ErrTransport.
func transportError(err error) error {
	if errors.Is(err, host.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %v", host.ErrTransport, err)
}

func isClosed(err error) bool {
	return errors.Is(err, jsonrpc2.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
