package httpx

import "github.com/google/uuid"

type HttpMethod string

const (
	GET    HttpMethod = "GET"
	POST   HttpMethod = "POST"
	PUT    HttpMethod = "PUT"
	DELETE HttpMethod = "DELETE"
	PATCH  HttpMethod = "PATCH"
)

func (m HttpMethod) String() string {
	return string(m)
}

type RequestOption struct {
	Method    HttpMethod
	Path      string
	Headers   map[string]string
	Body      interface{}
	RequestID string
}

type Option func(option *RequestOption)

func NewRequestOption(opts ...Option) *RequestOption {
	option := &RequestOption{
		Method:    GET,
		RequestID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(option)
	}
	return option
}

func WithMethod(method HttpMethod) Option {
	return func(option *RequestOption) {
		option.Method = method
	}
}

func WithMethodGet() Option {
	return WithMethod(GET)
}

func WithMethodPut() Option {
	return WithMethod(PUT)
}

func WithPath(path string) Option {
	return func(option *RequestOption) {
		option.Path = path
	}
}

func WithHeaders(headers map[string]string) Option {
	return func(option *RequestOption) {
		option.Headers = headers
	}
}

func WithBody(body interface{}) Option {
	return func(option *RequestOption) {
		option.Body = body
	}
}
