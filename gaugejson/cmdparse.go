package gaugejson

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// RPCErrorCode represents an error code to be used as a part of an RPCError
// which is in turn used in a JSON-RPC Response object.
type RPCErrorCode int

// RPCError represents an error that is used as a part of a JSON-RPC Response
// object.
type RPCError struct {
	Code    RPCErrorCode `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
}

var _ error = &RPCError{}

// Error returns a string describing the RPC error. This satisfies the
// builtin error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// NewRPCError constructs and returns a new JSON-RPC error.
func NewRPCError(code RPCErrorCode, message string) *RPCError {
	return &RPCError{
		Code:    code,
		Message: message,
	}
}

// Request is a raw JSON-RPC request. Params is kept unparsed until the
// method is known; UnmarshalCmd decodes it into the registered command
// struct for the method.
type Request struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

// Response is the general form of a JSON-RPC response. The Result field can
// be anything the method returns; Error is nil on success.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      *interface{}    `json:"id"`
}

var (
	registerLock   sync.RWMutex
	methodToStruct = make(map[string]reflect.Type)
	structToMethod = make(map[reflect.Type]string)
)

// MustRegisterCmd registers the command struct for a method, panicking on
// duplicate or malformed registrations. It is meant for package init
// functions, where a failure is a programming error.
func MustRegisterCmd(method string, cmd interface{}) {
	registerLock.Lock()
	defer registerLock.Unlock()

	if _, ok := methodToStruct[method]; ok {
		panic(fmt.Sprintf("method %q is already registered", method))
	}

	rt := reflect.TypeOf(cmd)
	if rt.Kind() != reflect.Ptr || rt.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("command %q is not a pointer to a struct", method))
	}

	methodToStruct[method] = rt.Elem()
	structToMethod[rt.Elem()] = method
}

// RegisteredCmdMethods returns a sorted list of methods for all registered
// commands.
func RegisteredCmdMethods() []string {
	registerLock.RLock()
	defer registerLock.RUnlock()

	methods := make([]string, 0, len(methodToStruct))
	for k := range methodToStruct {
		methods = append(methods, k)
	}
	sort.Strings(methods)
	return methods
}

// CmdMethod returns the method registered for the given command struct.
func CmdMethod(cmd interface{}) (string, error) {
	registerLock.RLock()
	defer registerLock.RUnlock()

	rt := reflect.TypeOf(cmd)
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	method, ok := structToMethod[rt]
	if !ok {
		return "", fmt.Errorf("%q is not a registered command type", rt)
	}
	return method, nil
}

// UnmarshalCmd decodes a request's params into a new instance of the command
// struct registered for its method.
func UnmarshalCmd(r *Request) (interface{}, error) {
	registerLock.RLock()
	rt, ok := methodToStruct[r.Method]
	registerLock.RUnlock()
	if !ok {
		return nil, ErrRPCMethodNotFound
	}

	cmd := reflect.New(rt).Interface()
	if len(r.Params) > 0 {
		if err := json.Unmarshal(r.Params, cmd); err != nil {
			return nil, ErrRPCInvalidParams
		}
	}
	return cmd, nil
}

// MarshalCmd renders a registered command struct as a complete JSON-RPC
// request with the given id.
func MarshalCmd(id interface{}, cmd interface{}) ([]byte, error) {
	method, err := CmdMethod(cmd)
	if err != nil {
		return nil, err
	}
	params, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Request{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	})
}

// MarshalResponse renders a result or an RPC error as a complete JSON-RPC
// response with the given id.
func MarshalResponse(id interface{}, result interface{}, rpcErr *RPCError) ([]byte, error) {
	var rawResult json.RawMessage
	if result != nil {
		var err error
		rawResult, err = json.Marshal(result)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(&Response{
		Jsonrpc: "2.0",
		Result:  rawResult,
		Error:   rpcErr,
		ID:      &id,
	})
}
