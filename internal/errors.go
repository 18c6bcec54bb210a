// Copyright 2024 Helios Technologies, Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents the platform-wide error codes that can be raised by
// Admin SDK APIs.
type ErrorCode string

const (
	// InvalidArgument indicates that the client specified an invalid argument.
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// FailedPrecondition indicates that the request cannot be executed in the
	// current system state.
	FailedPrecondition ErrorCode = "FAILED_PRECONDITION"

	// OutOfRange indicates that the client specified an invalid range.
	OutOfRange ErrorCode = "OUT_OF_RANGE"

	// Unauthenticated indicates that the request did not carry valid
	// authentication credentials.
	Unauthenticated ErrorCode = "UNAUTHENTICATED"

	// PermissionDenied indicates that the caller does not have permission to
	// execute the specified operation.
	PermissionDenied ErrorCode = "PERMISSION_DENIED"

	// NotFound indicates that the requested entity was not found.
	NotFound ErrorCode = "NOT_FOUND"

	// Conflict is a custom error code that represents HTTP 409 responses.
	//
	// Helios APIs typically respond with ABORTED or ALREADY_EXISTS explicitly.
	// But a few old endpoints send HTTP 409 Conflict without any additional
	// details to distinguish between the two cases. For those we currently use
	// this error code.
	Conflict ErrorCode = "CONFLICT"

	// Aborted indicates a concurrency conflict, such as a failed
	// read-modify-write transaction.
	Aborted ErrorCode = "ABORTED"

	// AlreadyExists indicates that the entity a client attempted to create
	// already exists.
	AlreadyExists ErrorCode = "ALREADY_EXISTS"

	// ResourceExhausted indicates that a quota has been exceeded.
	ResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"

	// Cancelled indicates that the operation was cancelled by the caller.
	Cancelled ErrorCode = "CANCELLED"

	// DataLoss indicates unrecoverable data loss or corruption.
	DataLoss ErrorCode = "DATA_LOSS"

	// Unknown indicates an error of unknown origin.
	Unknown ErrorCode = "UNKNOWN"

	// Internal indicates an internal server error.
	Internal ErrorCode = "INTERNAL"

	// Unavailable indicates that the service is currently unavailable.
	Unavailable ErrorCode = "UNAVAILABLE"

	// DeadlineExceeded indicates that the request deadline was exceeded before
	// the operation could complete.
	DeadlineExceeded ErrorCode = "DEADLINE_EXCEEDED"
)

// PlatformError is an error type containing an error code string.
type PlatformError struct {
	ErrorCode ErrorCode
	String    string
	Response  *http.Response
	Ext       map[string]interface{}
}

func (pe *PlatformError) Error() string {
	return pe.String
}

// HasPlatformErrorCode checks if the given error contains a specific error code.
func HasPlatformErrorCode(err error, code ErrorCode) bool {
	pe, ok := err.(*PlatformError)
	return ok && pe.ErrorCode == code
}

var httpStatusToErrorCodes = map[int]ErrorCode{
	http.StatusBadRequest:          InvalidArgument,
	http.StatusUnauthorized:        Unauthenticated,
	http.StatusForbidden:           PermissionDenied,
	http.StatusNotFound:            NotFound,
	http.StatusConflict:            Conflict,
	http.StatusTooManyRequests:     ResourceExhausted,
	http.StatusInternalServerError: Internal,
	http.StatusServiceUnavailable:  Unavailable,
}

// NewPlatformError creates a new error from the given HTTP response.
func NewPlatformError(resp *Response) *PlatformError {
	code, ok := httpStatusToErrorCodes[resp.Status]
	if !ok {
		code = Unknown
	}

	return &PlatformError{
		ErrorCode: code,
		String:    fmt.Sprintf("unexpected http response with status: %d; body: %s", resp.Status, string(resp.Body)),
		Response:  resp.LowLevelResponse(),
		Ext:       make(map[string]interface{}),
	}
}

// NewPlatformErrorFromPayload parses the response payload as a standard Helios
// API error response and creates an error from the details extracted.
//
// If the response fails to parse, or otherwise doesn't provide any useful
// details, NewPlatformErrorFromPayload creates an error with some sensible
// defaults.
func NewPlatformErrorFromPayload(resp *Response) *PlatformError {
	base := NewPlatformError(resp)

	var apiError struct {
		Error struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	json.Unmarshal(resp.Body, &apiError) // ignore any json parse errors at this level
	if apiError.Error.Status != "" {
		base.ErrorCode = ErrorCode(apiError.Error.Status)
	}

	if apiError.Error.Message != "" {
		base.String = apiError.Error.Message
	}

	return base
}
