package errors

import (
	"errors"
	"fmt"
)

// BackendDetail is attached by the backend transport so error logs carry the
// upstream service, HTTP status, and the error code the service reported.
type BackendDetail struct {
	Service string `json:"service,omitempty"`
	Status  int    `json:"status,omitempty"`
	Code    string `json:"backend_code,omitempty"`
	Message string `json:"backend_message,omitempty"`
}

func (d *BackendDetail) Error() string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%s responded %d (%s): %s", d.Service, d.Status, d.Code, d.Message)
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	BackendService string `json:"backend_service,omitempty"`
	BackendStatus  int    `json:"backend_status,omitempty"`
	BackendCode    string `json:"backend_code,omitempty"`
	BackendMessage string `json:"backend_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var detail *BackendDetail
	if errors.As(err, &detail) {
		d.BackendService = detail.Service
		d.BackendStatus = detail.Status
		d.BackendCode = detail.Code
		d.BackendMessage = detail.Message
	}

	return d
}
