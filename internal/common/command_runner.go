package common

import (
	"context"
	"fmt"

	"resumescore/internal/errors"
)

// CreateInputFunc builds the operation input from the raw file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc logs the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is the scoring operation a command wraps.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunFileCommand is the shared pipeline behind file-based commands:
// read and validate the input files, build the operation input, run
// the operation, and push the result through the output handler.
func RunFileCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}
	logDetails(input, cmdConfig)

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}
	return NewOutputHandler(logger).HandleOutput(result, cmdConfig)
}
