// Package dataset provides the in-memory table model shared by every
// pipeline stage: typed columns, row previews, subsetting, and CSV output.
//
// Tables are treated as values. Operations that change data return a new
// Table and leave the receiver untouched.
package dataset
