// Package errors provides examples of structured error handling in Quasar.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/quasar/pkg/errors"
)

// Example demonstrates basic error creation and wrapping.
func Example() {
	// Create a new error with type
	err := errors.New(errors.ErrorTypeData, "failed to decode source column")

	// Add context details
	err = err.WithDetail("column", "price").
		WithDetail("row", 1042)

	// Print the error
	fmt.Println(err.Error())

	// Output:
	// data: failed to decode source column
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	// Simulate an underlying error
	originalErr := io.EOF

	// Wrap the error with context
	err := errors.Wrap(originalErr, errors.ErrorTypeFile, "failed to read CSV file").
		WithDetail("file", "trades.csv").
		WithDetail("line", 42)

	// Check the error type
	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("This is a file error")
	}

	// Access the original error using Go's standard errors.Is
	if originalErr == io.EOF {
		fmt.Println("Original error was EOF")
	}

	// Output:
	// This is a file error
	// Original error was EOF
}

// ExampleUnknownColumn demonstrates the engine error constructors.
func ExampleUnknownColumn() {
	err := errors.UnknownColumn("discount")
	fmt.Println(err)
	fmt.Println(errors.IsType(err, errors.ErrorTypeUnknownColumn))

	// Output:
	// unknown_column: source does not supply column "discount"
	// true
}

// ExampleInvalidLimit shows validation of index generation windows.
func ExampleInvalidLimit() {
	err := errors.InvalidLimit(0)
	fmt.Println(err)
	fmt.Println(err.Details["limit"])

	// Output:
	// invalid_limit: index generation requires a positive limit, got 0
	// 0
}

// ExampleNotInitialized shows the guard against using a loader before Init.
func ExampleNotInitialized() {
	err := errors.NotInitialized("FillTable")
	fmt.Println(err)

	// Output:
	// not_initialized: FillTable called before loader initialization
}

// ExampleUnsupportedBuffer reports a source kind the engine cannot ingest.
func ExampleUnsupportedBuffer() {
	err := errors.UnsupportedBuffer("tags", "object", "datetime")
	fmt.Println(err)

	// Output:
	// unsupported_buffer: column "tags": cannot fill datetime destination from object buffer
}

// ExampleIsType demonstrates checking error types.
func ExampleIsType() {
	// Create errors of different types
	limErr := errors.InvalidLimit(-5)
	valErr := errors.New(errors.ErrorTypeValidation, "invalid input")

	// Wrap an error
	wrappedErr := errors.Wrap(limErr, errors.ErrorTypeData, "index synthesis failed")

	// Check error types
	fmt.Printf("Is invalid limit: %v\n", errors.IsType(limErr, errors.ErrorTypeInvalidLimit))
	fmt.Printf("Is validation error: %v\n", errors.IsType(valErr, errors.ErrorTypeValidation))

	// IsType reports the outermost type, not the wrapped one
	fmt.Printf("Wrapped error is data type: %v\n", errors.IsType(wrappedErr, errors.ErrorTypeData))
	fmt.Printf("Wrapped error reports invalid limit: %v\n", errors.IsType(wrappedErr, errors.ErrorTypeInvalidLimit))

	// Output:
	// Is invalid limit: true
	// Is validation error: true
	// Wrapped error is data type: true
	// Wrapped error reports invalid limit: false
}

// Example_errorChain shows how to chain multiple error contexts.
func Example_errorChain() {
	// Simulate a chain of operations that can fail
	err := decodeBuffer()
	if err != nil {
		// Wrap with additional context at each level
		err = errors.Wrap(err, errors.ErrorTypeData, "failed to fill column").
			WithDetail("column", "volume")

		fmt.Println("Full error chain:", err)
	}

	// Output:
	// Full error chain: data: failed to fill column: mixed_column_kinds: column "volume" mixes element kinds
}

// decodeBuffer simulates a decode error
func decodeBuffer() error {
	return errors.MixedKinds("volume")
}
