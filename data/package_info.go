// Package data contains the fixture files that the scenarios use, embedded in the harness
// binary, and the code for loading them. The file format is described in data-files/README.md.
package data
