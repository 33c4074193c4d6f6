// Package dataset loads and writes the tabular vocabulary files the
// translation pipeline works on. Row order in the file defines the row
// index; columns unknown to the pipeline are carried through unchanged.
package dataset
