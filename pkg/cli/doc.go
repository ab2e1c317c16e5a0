/*
Package cli provides command-line interface utilities for Ganymede.

The cli package includes output formatters and common helpers used by the
ganymede command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, entries); err != nil {
		return err
	}

Errors:

Command failures surface as StoreError (the store could not be opened
or is misconfigured) or QueryError (a query against an open store
failed), both carrying enough context to tell the operator which store
and state id were involved.

Signal Handling:

For cancelling store queries on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	entries, err := ledger.Query(ctx, query)

A second signal exits the process immediately.
*/
package cli
