// Package temporal runs conversions as durable workflows so large batches of
// legacy source files survive worker restarts and oracle outages.
package temporal

import (
	"time"

	"go.temporal.io/sdk/workflow"
)

// BatchInput names the files to convert and where artifacts go.
type BatchInput struct {
	InputPaths []string
	OutputDir  string
}

// BatchOutput summarizes a finished batch.
type BatchOutput struct {
	Results []ConversionResult
	Failed  int
}

// ConversionWorkflow converts each input file independently; one failed file
// does not abort the batch.
func ConversionWorkflow(ctx workflow.Context, input BatchInput) (*BatchOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	output := &BatchOutput{}
	for _, path := range input.InputPaths {
		var result ConversionResult
		err := workflow.ExecuteActivity(ctx, ConvertActivity, ConversionInput{
			InputPath: path,
			OutputDir: input.OutputDir,
		}).Get(ctx, &result)
		if err != nil {
			result = ConversionResult{InputPath: path, Error: err.Error()}
		}
		if result.Error != "" {
			output.Failed++
		}
		output.Results = append(output.Results, result)
	}
	return output, nil
}
