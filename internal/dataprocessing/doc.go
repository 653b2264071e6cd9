// Package dataprocessing loads contract uploads and builds the contract report.
//
// # Loading
//
// Parse reads a CSV or XLSX upload into a domain.Table. Headers are bound to
// logical fields through configurable aliases, and the created_at column is
// coerced to timestamps. A cell that cannot be parsed becomes a missing
// timestamp and is counted in Table.CoercedDates; it never fails the load.
//
//	table, err := dataprocessing.Parse(ctx, file, dataprocessing.FormatXLSX, opts)
//	if err != nil {
//	    return err
//	}
//
// # Sections
//
// Each section reads the table on its own and returns nil when one of its
// columns is absent:
//
//	- DetectMultiMenu: contracts that touched more than one menu
//	- PivotByLatestDate: menu by product counts of each contract's newest row
//	- PivotByLatestStatus: the same counts using each contract's
//	  alphabetically greatest status
//	- TopBranches: top branches per target menu by distinct contracts
//	- Preview: the first rows projected onto the known columns
//
// Engine runs all of them in order, tracing each one, and collects skipped
// sections and notices into a domain.ContractReport.
package dataprocessing
