// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeComponentTimeout,
//	    "command exceeded allotted time",
//	    ctx.Err(),
//	    map[string]interface{}{
//	        "component": "host.cmd.uname",
//	        "timeout":   "10s",
//	    },
//	)
package errors
