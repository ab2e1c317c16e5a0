/*
Package logging configures the process-wide structured logger.

Engine components log through slog.Default(), so a deployment configures
logging once at startup:

	logging.Setup(&logging.Config{
		Level:  "debug",
		Format: logging.FormatJSON,
	})

Context helpers carry execution metadata into log records:

	ctx = logging.WithExecutionID(ctx, executionID)
	logging.FromContext(ctx, nil).Info("replaying state")
*/
package logging
