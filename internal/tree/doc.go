// Package tree turns an NDAR export into the project/session/acquisition
// hierarchy scitran stores.
//
// The transform functions map single rows to payloads; the builders read the
// export files and collect those payloads into ordered maps keyed by subject
// key. Order always follows first appearance in the source file so uploads and
// test fixtures are reproducible.
package tree
